package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name     string
		kind     LabelKind
		input    string
		expected string
	}{
		{"environment", KindEnvironment, EnvironmentProduction, "Producción"},
		{"machine type", KindMachineType, MachineTypePhysical, "Física"},
		{"severity", KindSeverity, SeverityCritical, "Crítica"},
		{"target", KindTargetType, TargetMachine, "Máquina"},
		{"server in maintenance", KindServerStatus, ServerStatusMaintenance, "En mantenimiento"},
		{"maintenance event", KindEventType, EventTypeMaintenance, "Mantenimiento"},
		{"failed report", KindReportStatus, ReportStatusFailed, "Fallido"},
		{"unknown value", KindServerStatus, "unknown-value", "unknown-value"},
		{"unknown kind", LabelKind("rack"), ServerStatusActive, ServerStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Label(tt.kind, tt.input))
		})
	}
}

func TestLabelDependsOnKind(t *testing.T) {
	assert.NotEqual(t,
		Label(KindServerStatus, ServerStatusMaintenance),
		Label(KindEventType, EventTypeMaintenance))
}

func TestAffectedInfraTargetID(t *testing.T) {
	id := uuid.New()
	a := AffectedInfra{TargetType: TargetCluster, ClusterID: &id}
	assert.Equal(t, &id, a.TargetID())

	a.TargetType = "rack"
	assert.Nil(t, a.TargetID())
}
