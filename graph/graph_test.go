package graph

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/internal/testdb"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/service"
	"github.com/tnqbao/gau-inventory-service/utils"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	logger := infra.NewConsoleLogger(io.Discard)
	svc := service.NewService(repository.NewRepository(testdb.Open(t)), logger, service.Options{})
	exec, err := NewExecutor(svc, logger)
	require.NoError(t, err)
	return exec
}

func editor() context.Context {
	return WithPermission(context.Background(), "editor")
}

func run(t *testing.T, exec *Executor, ctx context.Context, query string, vars map[string]interface{}, out interface{}) *graphql.Result {
	t.Helper()
	result := exec.Execute(ctx, Request{Query: query, Variables: vars})
	if out != nil {
		require.False(t, result.HasErrors(), "unexpected errors: %v", result.Errors)
		raw, err := json.Marshal(result.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return result
}

func errorCode(t *testing.T, result *graphql.Result) string {
	t.Helper()
	require.True(t, result.HasErrors())
	code, _ := result.Errors[0].Extensions["code"].(string)
	return code
}

const createServer = `mutation($input: ServidorInput!) {
	createServidorMutation(input: $input) { id hostname status status_label data_center { name } }
}`

func TestServerLifecycle(t *testing.T) {
	exec := newTestExecutor(t)

	var dc struct {
		CreateDataCenterMutation struct {
			ID string `json:"id"`
		} `json:"createDataCenterMutation"`
	}
	run(t, exec, editor(), `mutation { createDataCenterMutation(input: {name: "DC Central", location: "Lima"}) { id } }`, nil, &dc)

	var created struct {
		CreateServidorMutation struct {
			ID          string `json:"id"`
			Hostname    string `json:"hostname"`
			Status      string `json:"status"`
			StatusLabel string `json:"status_label"`
			DataCenter  struct {
				Name string `json:"name"`
			} `json:"data_center"`
		} `json:"createServidorMutation"`
	}
	run(t, exec, editor(), createServer, map[string]interface{}{
		"input": map[string]interface{}{
			"hostname":       "srv-gql",
			"ip_address":     "10.1.1.1",
			"cpu_cores":      16,
			"data_center_id": dc.CreateDataCenterMutation.ID,
		},
	}, &created)
	server := created.CreateServidorMutation
	assert.Equal(t, "srv-gql", server.Hostname)
	assert.Equal(t, "active", server.Status)
	assert.Equal(t, "DC Central", server.DataCenter.Name)
	assert.NotEmpty(t, server.StatusLabel)

	var detail struct {
		DataCenter struct {
			Servidores []struct {
				Hostname string `json:"hostname"`
			} `json:"servidores"`
		} `json:"dataCenter"`
	}
	run(t, exec, context.Background(), `query($id: UUID!) { dataCenter(id: $id) { servidores { hostname } } }`,
		map[string]interface{}{"id": dc.CreateDataCenterMutation.ID}, &detail)
	require.Len(t, detail.DataCenter.Servidores, 1)

	result := run(t, exec, editor(), `mutation($id: UUID!) { deleteDataCenterMutation(id: $id) }`,
		map[string]interface{}{"id": dc.CreateDataCenterMutation.ID}, nil)
	assert.Equal(t, utils.CodeInUse, errorCode(t, result))

	var deleted struct {
		DeleteServidorMutation string `json:"deleteServidorMutation"`
	}
	run(t, exec, editor(), `mutation($id: UUID!) { deleteServidorMutation(id: $id) }`,
		map[string]interface{}{"id": server.ID}, &deleted)
	assert.Equal(t, server.ID, deleted.DeleteServidorMutation)

	result = run(t, exec, context.Background(), `query($id: UUID!) { servidor(id: $id) { id } }`,
		map[string]interface{}{"id": server.ID}, nil)
	assert.Equal(t, utils.CodeNotFound, errorCode(t, result))
}

func TestMutationErrors(t *testing.T) {
	exec := newTestExecutor(t)
	vars := map[string]interface{}{"input": map[string]interface{}{"hostname": "srv-x", "ip_address": "nope"}}

	tests := []struct {
		name string
		ctx  context.Context
		code string
	}{
		{"anonymous caller", context.Background(), utils.CodeForbidden},
		{"viewer", WithPermission(context.Background(), "viewer"), utils.CodeForbidden},
		{"invalid ip", editor(), utils.CodeInvalidInput},
		{"admin invalid ip", WithPermission(context.Background(), "admin"), utils.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := run(t, exec, tt.ctx, createServer, vars, nil)
			assert.Equal(t, tt.code, errorCode(t, result))
		})
	}
}

func TestCreateEventWithInfra(t *testing.T) {
	exec := newTestExecutor(t)

	var machine struct {
		CreateMaquinaMutation struct {
			ID string `json:"id"`
		} `json:"createMaquinaMutation"`
	}
	run(t, exec, editor(), `mutation { createMaquinaMutation(input: {name: "vm-gql", type: "virtual"}) { id } }`, nil, &machine)

	var created struct {
		CreateEventoMutation struct {
			ID            string                 `json:"id"`
			Status        string                 `json:"status"`
			SeverityLabel string                 `json:"severity_label"`
			EndedAt       *string                `json:"ended_at"`
			Metadata      map[string]interface{} `json:"metadata"`
			InfraAfectada []struct {
				TargetType  string `json:"target_type"`
				TargetLabel string `json:"target_label"`
			} `json:"infra_afectada"`
		} `json:"createEventoMutation"`
	}
	run(t, exec, editor(), `mutation($input: EventoInput!) {
		createEventoMutation(input: $input) {
			id status severity_label ended_at metadata
			infra_afectada { target_type target_label }
		}
	}`, map[string]interface{}{
		"input": map[string]interface{}{
			"title":    "Reinicio no planificado",
			"type":     "incident",
			"severity": "high",
			"status":   "resolved",
			"metadata": map[string]interface{}{"ticket": "INC-9"},
			"infra_afectada": []interface{}{
				map[string]interface{}{"target_type": "machine", "target_id": machine.CreateMaquinaMutation.ID},
			},
		},
	}, &created)

	event := created.CreateEventoMutation
	assert.Equal(t, "resolved", event.Status)
	assert.NotNil(t, event.EndedAt)
	assert.Equal(t, "INC-9", event.Metadata["ticket"])
	require.Len(t, event.InfraAfectada, 1)
	assert.Equal(t, "vm-gql", event.InfraAfectada[0].TargetLabel)

	var detail struct {
		Maquina struct {
			Eventos []struct {
				ID string `json:"id"`
			} `json:"eventos"`
			Servidor *struct {
				ID string `json:"id"`
			} `json:"servidor"`
		} `json:"maquina"`
	}
	run(t, exec, context.Background(), `query($id: UUID!) { maquina(id: $id) { eventos { id } servidor { id } } }`,
		map[string]interface{}{"id": machine.CreateMaquinaMutation.ID}, &detail)
	require.Len(t, detail.Maquina.Eventos, 1)
	assert.Equal(t, event.ID, detail.Maquina.Eventos[0].ID)
	assert.Nil(t, detail.Maquina.Servidor)
}

func TestRoleFormSectionsAndOptions(t *testing.T) {
	exec := newTestExecutor(t)

	var role struct {
		CreateRolMutation struct {
			ID string `json:"id"`
		} `json:"createRolMutation"`
	}
	run(t, exec, editor(), `mutation { createRolMutation(input: {name: "dba", scope: "system"}) { id } }`, nil, &role)
	run(t, exec, editor(), `mutation { createSistemaMutation(input: {name: "Inventario"}) { id } }`, nil, &struct{}{})

	var out struct {
		RolFormSections struct {
			Machine bool `json:"machine"`
			System  bool `json:"system"`
			Role    struct {
				Name string `json:"name"`
			} `json:"role"`
		} `json:"rolFormSections"`
		OpcionesInfraAfectada []struct {
			Label string `json:"label"`
		} `json:"opcionesInfraAfectada"`
	}
	run(t, exec, context.Background(), `query($id: UUID!) {
		rolFormSections(role_id: $id) { machine system role { name } }
		opcionesInfraAfectada(target_type: "system", search: "inv") { label }
	}`, map[string]interface{}{"id": role.CreateRolMutation.ID}, &out)

	assert.False(t, out.RolFormSections.Machine)
	assert.True(t, out.RolFormSections.System)
	assert.Equal(t, "dba", out.RolFormSections.Role.Name)
	require.Len(t, out.OpcionesInfraAfectada, 1)
	assert.Equal(t, "Inventario", out.OpcionesInfraAfectada[0].Label)
}

func TestDashboardQuery(t *testing.T) {
	exec := newTestExecutor(t)
	run(t, exec, editor(), `mutation { createMaquinaMutation(input: {name: "metal-1", type: "physical"}) { id } }`, nil, &struct{}{})

	var out struct {
		Dashboard struct {
			Machines       int `json:"machines"`
			MachinesByType []struct {
				Key   string `json:"key"`
				Count int    `json:"count"`
			} `json:"machines_by_type"`
		} `json:"dashboard"`
	}
	run(t, exec, context.Background(), `{ dashboard { machines machines_by_type { key count } } }`, nil, &out)
	assert.Equal(t, 1, out.Dashboard.Machines)
	require.Len(t, out.Dashboard.MachinesByType, 2)
	assert.Equal(t, "physical", out.Dashboard.MachinesByType[1].Key)
	assert.Equal(t, 1, out.Dashboard.MachinesByType[1].Count)
}

func TestMaintenanceLabelsDependOnField(t *testing.T) {
	exec := newTestExecutor(t)

	var out struct {
		CreateServidorMutation struct {
			StatusLabel string `json:"status_label"`
		} `json:"createServidorMutation"`
		CreateEventoMutation struct {
			TypeLabel string `json:"type_label"`
		} `json:"createEventoMutation"`
	}
	run(t, exec, editor(), `mutation {
		createServidorMutation(input: {hostname: "srv-mnt", status: "maintenance"}) { status_label }
		createEventoMutation(input: {title: "Cambio de discos", type: "maintenance", severity: "low"}) { type_label }
	}`, nil, &out)

	assert.Equal(t, "En mantenimiento", out.CreateServidorMutation.StatusLabel)
	assert.Equal(t, "Mantenimiento", out.CreateEventoMutation.TypeLabel)
}
