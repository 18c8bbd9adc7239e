package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-inventory-service/entity"
)

func deployment(env string, at time.Time, version string) entity.Deployment {
	return entity.Deployment{ID: uuid.New(), Environment: env, DeployedAt: at, Version: version}
}

func TestGroupDeploymentsByEnvironment(t *testing.T) {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		input      []entity.Deployment
		envs       []string
		firstByEnv map[string]string
	}{
		{
			name:  "empty input",
			input: nil,
			envs:  []string{},
		},
		{
			name: "fixed order and empty groups omitted",
			input: []entity.Deployment{
				deployment(entity.EnvironmentDevelopment, base, "d1"),
				deployment(entity.EnvironmentProduction, base, "p1"),
				deployment(entity.EnvironmentTesting, base, "t1"),
			},
			envs: []string{entity.EnvironmentProduction, entity.EnvironmentTesting, entity.EnvironmentDevelopment},
		},
		{
			name: "newest first within a group",
			input: []entity.Deployment{
				deployment(entity.EnvironmentStaging, base, "old"),
				deployment(entity.EnvironmentStaging, base.Add(48*time.Hour), "newest"),
				deployment(entity.EnvironmentStaging, base.Add(24*time.Hour), "middle"),
			},
			envs:       []string{entity.EnvironmentStaging},
			firstByEnv: map[string]string{entity.EnvironmentStaging: "newest"},
		},
		{
			name: "unknown environments appended by name",
			input: []entity.Deployment{
				deployment("qa", base, "q1"),
				deployment("dr", base, "dr1"),
				deployment(entity.EnvironmentProduction, base, "p1"),
			},
			envs: []string{entity.EnvironmentProduction, "dr", "qa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := GroupDeploymentsByEnvironment(tt.input)

			envs := make([]string, 0, len(groups))
			total := 0
			for _, g := range groups {
				envs = append(envs, g.Environment)
				assert.NotEmpty(t, g.Deployments)
				total += len(g.Deployments)
				if want, ok := tt.firstByEnv[g.Environment]; ok {
					assert.Equal(t, want, g.Deployments[0].Version)
				}
			}
			assert.Equal(t, tt.envs, envs)
			assert.Equal(t, len(tt.input), total)
		})
	}
}

func TestGroupLabels(t *testing.T) {
	groups := GroupDeploymentsByEnvironment([]entity.Deployment{
		deployment(entity.EnvironmentProduction, time.Now(), "1"),
		deployment("qa", time.Now(), "1"),
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Producción", groups[0].Label)
	assert.Equal(t, "qa", groups[1].Label)
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		expected string
	}{
		{"Billing", "sistema-billing-20240301.pdf"},
		{"Portal Clientes", "sistema-portal-clientes-20240301.pdf"},
		{"Nómina / Años", "sistema-nomina-anos-20240301.pdf"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system := entity.System{ID: uuid.MustParse("7b0f3d8e-8f4a-4a51-9a4e-0c2a9f4f1c11"), Name: tt.name}
			if tt.expected == "" {
				tt.expected = "sistema-7b0f3d8e-8f4a-4a51-9a4e-0c2a9f4f1c11-20240301.pdf"
			}
			assert.Equal(t, tt.expected, FileName(system, at))
		})
	}
}

func TestRender(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	component := entity.Component{ID: uuid.New(), Name: "api-facturación", Type: entity.ComponentTypeBackend, Technology: "Go", Version: "2.1.0"}
	machine := entity.Machine{ID: uuid.New(), Name: "vm-app-01"}

	deployments := []entity.Deployment{
		{ID: uuid.New(), Environment: entity.EnvironmentProduction, Version: "2.1.0", DeployedAt: at, Status: entity.DeploymentStatusSuccess, Component: &component, Machine: &machine},
		{ID: uuid.New(), Environment: entity.EnvironmentStaging, Version: "2.2.0-rc1", DeployedAt: at, Status: entity.DeploymentStatusFailed},
	}

	data := &SystemReportData{
		System:      entity.System{ID: uuid.New(), Name: "Facturación", Area: "Finanzas", Criticality: entity.CriticalityHigh, Status: entity.SystemStatusActive, Description: "Emisión de facturas electrónicas"},
		Components:  []entity.Component{component},
		Groups:      GroupDeploymentsByEnvironment(deployments),
		Users:       []UserAccess{{Username: "mlopez", FullName: "María López", Email: "mlopez@example.com", Roles: []string{"owner"}}},
		GeneratedAt: at,
	}

	out, err := Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestRenderEmptySystem(t *testing.T) {
	out, err := Render(&SystemReportData{
		System:      entity.System{ID: uuid.New(), Name: "Vacío"},
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
