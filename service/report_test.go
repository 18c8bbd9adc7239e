package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/utils"
)

func seedSystemWithDeployments(t *testing.T, f *fixture) *entity.System {
	t.Helper()
	ctx := context.Background()
	sys := f.system(t, "Facturación")
	vm := f.machine(t, "vm-fact")
	api, err := f.svc.CreateComponent(ctx, ComponentInput{SystemID: sys.ID, Name: "api", Type: entity.ComponentTypeBackend, Technology: "Go"})
	require.NoError(t, err)
	for _, env := range []string{entity.EnvironmentProduction, entity.EnvironmentDevelopment, entity.EnvironmentProduction} {
		_, err := f.svc.CreateDeployment(ctx, DeploymentInput{ComponentID: api.ID, MachineID: vm.ID, Environment: env, Version: "2.0.0"})
		require.NoError(t, err)
	}
	return sys
}

func TestRenderSystemReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sys := seedSystemWithDeployments(t, f)

	data, err := f.svc.SystemReportData(ctx, sys.ID)
	require.NoError(t, err)
	require.Len(t, data.Components, 1)
	require.Len(t, data.Groups, 2)
	assert.Equal(t, entity.EnvironmentProduction, data.Groups[0].Environment)
	assert.Equal(t, entity.EnvironmentDevelopment, data.Groups[1].Environment)
	assert.Len(t, data.Groups[0].Deployments, 2)

	pdf, name, err := f.svc.RenderSystemReport(ctx, sys.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Regexp(t, `^sistema-facturacion-\d{8}\.pdf$`, name)

	_, _, err = f.svc.RenderSystemReport(ctx, uuid.New())
	assertCode(t, err, utils.CodeNotFound)
}

func TestExportAndProcessSystemReport(t *testing.T) {
	f := newFixture(t)
	ctx := WithActor(context.Background(), "user-7")
	sys := seedSystemWithDeployments(t, f)

	rec, err := f.svc.ExportSystemReport(ctx, sys.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportStatusPending, rec.Status)
	assert.Equal(t, "user-7", rec.RequestedBy)
	require.Len(t, f.publisher.jobs, 1)
	assert.Equal(t, rec.ID.String(), f.publisher.jobs[0].ReportID)

	require.NoError(t, f.svc.ProcessReportJob(ctx, rec.ID))
	key := ReportObjectKey(sys.ID, rec.ID)
	require.Contains(t, f.storage.objects, key)

	// A redelivered job leaves the stored object alone.
	f.storage.objects[key] = []byte("kept")
	require.NoError(t, f.svc.ProcessReportJob(ctx, rec.ID))
	assert.Equal(t, []byte("kept"), f.storage.objects[key])

	views, err := f.svc.ReportsBySystem(ctx, sys.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entity.ReportStatusCompleted, views[0].Status)
	assert.Contains(t, views[0].DownloadURL, key)
	require.NotNil(t, views[0].CompletedAt)

	_, err = f.svc.ExportSystemReport(ctx, uuid.New())
	assertCode(t, err, utils.CodeNotFound)
}

func TestExportMarksReportFailedWhenQueueIsDown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sys := f.system(t, "Sin cola")
	f.publisher.err = errors.New("channel closed")

	rec, err := f.svc.ExportSystemReport(ctx, sys.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportStatusFailed, rec.Status)
	assert.Equal(t, "could not queue report job", rec.Error)

	views, err := f.svc.ReportsBySystem(ctx, sys.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entity.ReportStatusFailed, views[0].Status)
	assert.Empty(t, views[0].DownloadURL)
}

func TestFailReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sys := f.system(t, "Falla")

	rec, err := f.svc.ExportSystemReport(ctx, sys.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.FailReport(ctx, rec.ID, errors.New("render timeout")))

	views, err := f.svc.ReportsBySystem(ctx, sys.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entity.ReportStatusFailed, views[0].Status)
	assert.Equal(t, "render timeout", views[0].Error)
}

func TestPurgeAndDeleteSystemRemoveReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sys := f.system(t, "Archivo")

	rec, err := f.svc.ExportSystemReport(ctx, sys.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.ProcessReportJob(ctx, rec.ID))
	require.Len(t, f.storage.objects, 1)

	removed, err := f.svc.PurgeReports(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	f.svc.now = func() time.Time { return time.Now().UTC().Add(72 * time.Hour) }
	removed, err = f.svc.PurgeReports(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, f.storage.objects)

	other, err := f.svc.ExportSystemReport(ctx, sys.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.ProcessReportJob(ctx, other.ID))
	require.Len(t, f.storage.objects, 1)

	require.NoError(t, f.svc.DeleteSystem(ctx, sys.ID))
	assert.Empty(t, f.storage.objects)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	server := f.server(t, "srv-dash", nil)
	vm := f.machine(t, "vm-dash")
	_, err := f.svc.CreateMachine(ctx, MachineInput{Name: "metal", Type: entity.MachineTypePhysical, Status: entity.MachineStatusStopped})
	require.NoError(t, err)
	_, err = f.svc.AssignMachine(ctx, AssignmentInput{ServerID: server.ID, MachineID: vm.ID})
	require.NoError(t, err)
	_, err = f.svc.CreateEvent(ctx, EventInput{Title: "Alerta", Type: entity.EventTypeIncident, Severity: entity.SeverityHigh})
	require.NoError(t, err)

	d, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Servers)
	assert.EqualValues(t, 2, d.Machines)
	assert.EqualValues(t, 1, d.ActiveAssignments)
	assert.EqualValues(t, 1, d.Events)
	require.Len(t, d.RecentEvents, 1)
	assert.Equal(t, []CountByKey{
		{Key: entity.MachineTypeVirtual, Label: entity.Label(entity.KindMachineType, entity.MachineTypeVirtual), Count: 1},
		{Key: entity.MachineTypePhysical, Label: entity.Label(entity.KindMachineType, entity.MachineTypePhysical), Count: 1},
	}, d.MachinesByType)
	require.Len(t, d.OpenEventsBySeverity, 4)
	assert.EqualValues(t, 1, d.OpenEventsBySeverity[1].Count)
	assert.Len(t, d.DeploymentsByEnvironment, len(entity.EnvironmentOrder))
	assert.True(t, f.cache.has(DashboardCacheKey))

	f.machine(t, "vm-late")
	cached, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cached.Machines)

	require.NoError(t, f.svc.InvalidateDashboard(ctx))
	fresh, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, fresh.Machines)
}

func TestOrderedCounts(t *testing.T) {
	got := orderedCounts(map[string]int64{"b-extra": 2, entity.SeverityLow: 1, "a-extra": 3}, severityOrder, entity.KindSeverity)
	keys := make([]string, 0, len(got))
	for _, c := range got {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"critical", "high", "medium", "low", "a-extra", "b-extra"}, keys)
	assert.EqualValues(t, 0, got[0].Count)
	assert.EqualValues(t, 1, got[3].Count)
	assert.Equal(t, "Baja", got[3].Label)
	assert.Equal(t, "a-extra", got[4].Label)
}
