package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/infra/produce"
	"github.com/tnqbao/gau-inventory-service/internal/testdb"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

type memoryCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	gets  int
	hits  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return infra.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []produce.ChangeMessage
	jobs    []produce.ReportJobMessage
	err     error
}

func (p *recordingPublisher) PublishChange(_ context.Context, m produce.ChangeMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, m)
	return p.err
}

func (p *recordingPublisher) PublishSystemReport(_ context.Context, m produce.ReportJobMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, m)
	return p.err
}

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) PutReport(_ context.Context, key string, data []byte) (int64, error) {
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memoryStorage) PresignedReportURL(_ context.Context, key string, fileName string, _ time.Duration) (string, error) {
	return "https://storage.local/" + key + "?name=" + fileName, nil
}

func (m *memoryStorage) DeleteReport(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

type fixture struct {
	svc       *Service
	cache     *memoryCache
	publisher *recordingPublisher
	storage   *memoryStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cache:     newMemoryCache(),
		publisher: &recordingPublisher{},
		storage:   &memoryStorage{objects: map[string][]byte{}},
	}
	f.svc = NewService(repository.NewRepository(testdb.Open(t)), infra.NewConsoleLogger(io.Discard), Options{
		Cache:   f.cache,
		Changes: f.publisher,
		Reports: f.publisher,
		Storage: f.storage,
	})
	return f
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Error())
}

func (f *fixture) dataCenter(t *testing.T, name string) *entity.DataCenter {
	t.Helper()
	dc, err := f.svc.CreateDataCenter(context.Background(), DataCenterInput{Name: name})
	require.NoError(t, err)
	return dc
}

func (f *fixture) server(t *testing.T, hostname string, dc *uuid.UUID) *entity.Server {
	t.Helper()
	s, err := f.svc.CreateServer(context.Background(), ServerInput{Hostname: hostname, DataCenterID: dc})
	require.NoError(t, err)
	return s
}

func (f *fixture) machine(t *testing.T, name string) *entity.Machine {
	t.Helper()
	m, err := f.svc.CreateMachine(context.Background(), MachineInput{Name: name, Type: entity.MachineTypeVirtual})
	require.NoError(t, err)
	return m
}

func (f *fixture) system(t *testing.T, name string) *entity.System {
	t.Helper()
	s, err := f.svc.CreateSystem(context.Background(), SystemInput{Name: name})
	require.NoError(t, err)
	return s
}

func (f *fixture) user(t *testing.T, username string) *entity.User {
	t.Helper()
	u, err := f.svc.CreateUser(context.Background(), UserInput{Username: username, FullName: username, Email: username + "@example.com"})
	require.NoError(t, err)
	return u
}

func (f *fixture) role(t *testing.T, name, scope string) *entity.Role {
	t.Helper()
	r, err := f.svc.CreateRole(context.Background(), RoleInput{Name: name, Scope: scope})
	require.NoError(t, err)
	return r
}

func TestCreateServerDefaultsAndChange(t *testing.T) {
	f := newFixture(t)
	ctx := WithActor(context.Background(), "user-42")
	dc := f.dataCenter(t, "DC Norte")

	server, err := f.svc.CreateServer(ctx, ServerInput{Hostname: "  srv-01  ", DataCenterID: &dc.ID, IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "srv-01", server.Hostname)
	assert.Equal(t, entity.ServerStatusActive, server.Status)
	require.NotNil(t, server.DataCenter)
	assert.Equal(t, "DC Norte", server.DataCenter.Name)

	last := f.publisher.changes[len(f.publisher.changes)-1]
	assert.Equal(t, "inventory.server.created", last.RoutingKey())
	assert.Equal(t, server.ID.String(), last.ID)
	assert.Equal(t, "user-42", last.Actor)
}

func TestCreateServerErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.server(t, "srv-taken", nil)
	missing := uuid.New()

	tests := []struct {
		name  string
		input ServerInput
		code  string
	}{
		{"missing hostname", ServerInput{}, utils.CodeInvalidInput},
		{"bad ip", ServerInput{Hostname: "srv-02", IPAddress: "999.1.1.1"}, utils.CodeInvalidInput},
		{"bad status", ServerInput{Hostname: "srv-03", Status: "broken"}, utils.CodeInvalidInput},
		{"negative cores", ServerInput{Hostname: "srv-04", CPUCores: -1}, utils.CodeInvalidInput},
		{"unknown data center", ServerInput{Hostname: "srv-05", DataCenterID: &missing}, utils.CodeInvalidInput},
		{"duplicate hostname", ServerInput{Hostname: "SRV-TAKEN"}, utils.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateServer(ctx, tt.input)
			assertCode(t, err, tt.code)
		})
	}
}

func TestValidationErrorNamesField(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateServer(context.Background(), ServerInput{Hostname: "srv", IPAddress: "nope"})
	require.Error(t, err)
	assert.Equal(t, "invalid value for ip_address: ip", err.Error())
}

func TestUpdateServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	server := f.server(t, "srv-old", nil)
	f.server(t, "srv-other", nil)

	updated, err := f.svc.UpdateServer(ctx, server.ID, ServerInput{Hostname: "srv-new", Status: entity.ServerStatusMaintenance})
	require.NoError(t, err)
	assert.Equal(t, "srv-new", updated.Hostname)
	assert.Equal(t, entity.ServerStatusMaintenance, updated.Status)

	_, err = f.svc.UpdateServer(ctx, server.ID, ServerInput{Hostname: "srv-other"})
	assertCode(t, err, utils.CodeConflict)

	_, err = f.svc.UpdateServer(ctx, uuid.New(), ServerInput{Hostname: "srv-x"})
	assertCode(t, err, utils.CodeNotFound)
}

func TestDeleteRestrictedWhileInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dc := f.dataCenter(t, "DC Sur")
	server := f.server(t, "srv-dc", &dc.ID)

	err := f.svc.DeleteDataCenter(ctx, dc.ID)
	assertCode(t, err, utils.CodeInUse)
	assert.Equal(t, "data center is still referenced: 1 servers depend on it", err.Error())

	require.NoError(t, f.svc.DeleteServer(ctx, server.ID))
	require.NoError(t, f.svc.DeleteDataCenter(ctx, dc.ID))

	err = f.svc.DeleteDataCenter(ctx, dc.ID)
	assertCode(t, err, utils.CodeNotFound)
}

func TestDeleteClusterWithMachines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cluster, err := f.svc.CreateCluster(ctx, ClusterInput{Name: "k8s-prod", Type: entity.ClusterTypeKubernetes})
	require.NoError(t, err)
	_, err = f.svc.CreateMachine(ctx, MachineInput{Name: "node-1", Type: entity.MachineTypeVirtual, ClusterID: &cluster.ID})
	require.NoError(t, err)

	assertCode(t, f.svc.DeleteCluster(ctx, cluster.ID), utils.CodeInUse)

	machines, err := f.svc.MachinesByCluster(ctx, cluster.ID)
	require.NoError(t, err)
	assert.Len(t, machines, 1)
}

func TestAssignMachineKeepsSingleActiveAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1 := f.server(t, "srv-a", nil)
	s2 := f.server(t, "srv-b", nil)
	vm := f.machine(t, "vm-01")

	first, err := f.svc.AssignMachine(ctx, AssignmentInput{ServerID: s1.ID, MachineID: vm.ID})
	require.NoError(t, err)
	assert.True(t, first.Active())

	_, err = f.svc.AssignMachine(ctx, AssignmentInput{ServerID: s2.ID, MachineID: vm.ID})
	assertCode(t, err, utils.CodeConflict)
	assert.Contains(t, err.Error(), "srv-a")

	current, err := f.svc.CurrentServer(ctx, vm.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, s1.ID, current.ID)

	available, err := f.svc.ListAvailableMachines(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, available)

	tooEarly := first.AssignedAt.Add(-time.Hour)
	_, err = f.svc.ReleaseAssignment(ctx, first.ID, &tooEarly)
	assertCode(t, err, utils.CodeInvalidInput)

	released, err := f.svc.ReleaseAssignment(ctx, first.ID, nil)
	require.NoError(t, err)
	assert.False(t, released.Active())

	_, err = f.svc.ReleaseAssignment(ctx, first.ID, nil)
	assertCode(t, err, utils.CodeConflict)

	second, err := f.svc.AssignMachine(ctx, AssignmentInput{ServerID: s2.ID, MachineID: vm.ID, Notes: "migrated"})
	require.NoError(t, err)
	require.NotNil(t, second.Server)
	assert.Equal(t, "srv-b", second.Server.Hostname)

	onServer, err := f.svc.MachinesOnServer(ctx, s2.ID)
	require.NoError(t, err)
	require.Len(t, onServer, 1)
	assert.Equal(t, vm.ID, onServer[0].ID)

	// Reopening the first assignment would leave two active placements.
	_, err = f.svc.UpdateAssignment(ctx, first.ID, AssignmentInput{ServerID: s1.ID, MachineID: vm.ID})
	assertCode(t, err, utils.CodeConflict)

	assertCode(t, f.svc.DeleteServer(ctx, s1.ID), utils.CodeInUse)
	assertCode(t, f.svc.DeleteMachine(ctx, vm.ID), utils.CodeInUse)
}

func TestComponentNameUniquePerSystem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	billing := f.system(t, "Billing")
	crm := f.system(t, "CRM")

	_, err := f.svc.CreateComponent(ctx, ComponentInput{SystemID: billing.ID, Name: "api", Type: entity.ComponentTypeBackend})
	require.NoError(t, err)

	_, err = f.svc.CreateComponent(ctx, ComponentInput{SystemID: billing.ID, Name: "API", Type: entity.ComponentTypeBackend})
	assertCode(t, err, utils.CodeConflict)

	_, err = f.svc.CreateComponent(ctx, ComponentInput{SystemID: crm.ID, Name: "api", Type: entity.ComponentTypeBackend})
	require.NoError(t, err)

	_, err = f.svc.CreateComponent(ctx, ComponentInput{SystemID: uuid.New(), Name: "web", Type: entity.ComponentTypeFrontend})
	assertCode(t, err, utils.CodeInvalidInput)

	assertCode(t, f.svc.DeleteSystem(ctx, billing.ID), utils.CodeInUse)
}

func TestDeploymentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	system := f.system(t, "Portal")
	vm := f.machine(t, "vm-portal")
	component, err := f.svc.CreateComponent(ctx, ComponentInput{SystemID: system.ID, Name: "web", Type: entity.ComponentTypeFrontend})
	require.NoError(t, err)

	d, err := f.svc.CreateDeployment(ctx, DeploymentInput{
		ComponentID: component.ID, MachineID: vm.ID, Environment: entity.EnvironmentStaging, Version: "1.4.0",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DeploymentStatusSuccess, d.Status)
	assert.False(t, d.DeployedAt.IsZero())
	require.NotNil(t, d.Component)
	require.NotNil(t, d.Component.System)
	assert.Equal(t, "Portal", d.Component.System.Name)

	_, err = f.svc.CreateDeployment(ctx, DeploymentInput{
		ComponentID: component.ID, MachineID: vm.ID, Environment: "qa", Version: "1.4.0",
	})
	assertCode(t, err, utils.CodeInvalidInput)

	groups, err := f.svc.DeploymentsByEnvironment(ctx, system.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, entity.EnvironmentStaging, groups[0].Environment)

	assertCode(t, f.svc.DeleteComponent(ctx, component.ID), utils.CodeInUse)
	require.NoError(t, f.svc.DeleteDeployment(ctx, d.ID))
	require.NoError(t, f.svc.DeleteComponent(ctx, component.ID))
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	_, err := f.svc.CreateSystem(context.Background(), SystemInput{Name: "Nómina"})
	assert.NoError(t, err)
}
