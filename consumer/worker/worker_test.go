package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/infra/produce"
	"github.com/tnqbao/gau-inventory-service/internal/testdb"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/service"
	"github.com/tnqbao/gau-inventory-service/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type ackRecorder struct {
	mu       sync.Mutex
	acked    int
	nacked   int
	requeued int
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *ackRecorder) counts() (int, int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acked, a.nacked, a.requeued
}

type jobRecorder struct {
	jobs []produce.ReportJobMessage
}

func (r *jobRecorder) PublishSystemReport(_ context.Context, message produce.ReportJobMessage) error {
	r.jobs = append(r.jobs, message)
	return nil
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	err     error
}

func (m *memoryStorage) PutReport(_ context.Context, key string, data []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.err != nil {
		return 0, m.err
	}
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memoryStorage) PresignedReportURL(_ context.Context, key string, _ string, _ time.Duration) (string, error) {
	return "https://storage.local/" + key, nil
}

func (m *memoryStorage) DeleteReport(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return infra.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type mail struct {
	email   string
	subject string
}

type mailRecorder struct {
	mu    sync.Mutex
	mails []mail
	err   error
}

func (m *mailRecorder) SendEventWarning(_ context.Context, email, _, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.mails = append(m.mails, mail{email: email, subject: subject})
	return nil
}

type fixture struct {
	infra   *infra.Infra
	svc     *service.Service
	jobs    *jobRecorder
	storage *memoryStorage
	cache   *memoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := infra.NewConsoleLogger(io.Discard)
	f := &fixture{
		infra:   &infra.Infra{Logger: logger},
		jobs:    &jobRecorder{},
		storage: &memoryStorage{objects: map[string][]byte{}},
		cache:   &memoryCache{items: map[string][]byte{}},
	}
	f.svc = service.NewService(repository.NewRepository(testdb.Open(t)), logger, service.Options{
		Cache:   f.cache,
		Reports: f.jobs,
		Storage: f.storage,
	})
	return f
}

func delivery(t *testing.T, ack amqp.Acknowledger, payload interface{}) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

// drain runs the consumer loop over the given deliveries until the channel is exhausted.
func drain(ctx context.Context, run func(context.Context, <-chan amqp.Delivery), deliveries ...amqp.Delivery) {
	msgs := make(chan amqp.Delivery, len(deliveries))
	for _, d := range deliveries {
		msgs <- d
	}
	close(msgs)
	run(ctx, msgs)
}

func (f *fixture) exportReport(t *testing.T) *entity.SystemReport {
	t.Helper()
	ctx := context.Background()
	system, err := f.svc.CreateSystem(ctx, service.SystemInput{Name: "Facturación"})
	require.NoError(t, err)
	rec, err := f.svc.ExportSystemReport(ctx, system.ID)
	require.NoError(t, err)
	require.Len(t, f.jobs.jobs, 1)
	return rec
}

func TestReportConsumerRendersJob(t *testing.T) {
	f := newFixture(t)
	rec := f.exportReport(t)
	consumer := NewReportConsumer(nil, f.infra, f.svc)

	ack := &ackRecorder{}
	drain(context.Background(), consumer.run,
		delivery(t, ack, f.jobs.jobs[0]),
		delivery(t, ack, f.jobs.jobs[0]),
	)

	acked, nacked, _ := ack.counts()
	assert.Equal(t, 2, acked)
	assert.Equal(t, 0, nacked)
	assert.Equal(t, 1, f.storage.puts)
	assert.Contains(t, f.storage.objects, service.ReportObjectKey(rec.SystemID, rec.ID))

	views, err := f.svc.ReportsBySystem(context.Background(), rec.SystemID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entity.ReportStatusCompleted, views[0].Status)
	assert.NotEmpty(t, views[0].DownloadURL)
}

func TestReportConsumerGivesUp(t *testing.T) {
	f := newFixture(t)
	rec := f.exportReport(t)
	f.storage.err = errors.New("bucket unavailable")

	consumer := NewReportConsumer(nil, f.infra, f.svc)
	consumer.backoff = time.Millisecond

	ack := &ackRecorder{}
	drain(context.Background(), consumer.run, delivery(t, ack, f.jobs.jobs[0]))

	_, nacked, requeued := ack.counts()
	assert.Equal(t, 1, nacked)
	assert.Equal(t, 0, requeued)
	assert.Equal(t, maxAttempts, f.storage.puts)

	views, err := f.svc.ReportsBySystem(context.Background(), rec.SystemID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entity.ReportStatusFailed, views[0].Status)
	assert.Equal(t, "bucket unavailable", views[0].Error)
}

func TestReportConsumerRejectsBadMessages(t *testing.T) {
	f := newFixture(t)
	consumer := NewReportConsumer(nil, f.infra, f.svc)
	consumer.backoff = time.Millisecond

	ack := &ackRecorder{}
	drain(context.Background(), consumer.run,
		amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")},
		delivery(t, ack, produce.ReportJobMessage{ReportID: "nope"}),
		delivery(t, ack, produce.ReportJobMessage{ReportID: uuid.NewString()}),
	)

	acked, nacked, requeued := ack.counts()
	assert.Equal(t, 0, acked)
	assert.Equal(t, 3, nacked)
	assert.Equal(t, 0, requeued)
	assert.Equal(t, 0, f.storage.puts)
}

func TestConsumerStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	consumer := NewReportConsumer(nil, f.infra, f.svc)

	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan amqp.Delivery)
	done := make(chan struct{})
	go func() {
		consumer.run(ctx, msgs)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestRetryStopsOnPermanentErrors(t *testing.T) {
	calls := 0
	err := retry(context.Background(), time.Millisecond, func(int, error) {}, func() error {
		calls++
		return utils.NewNotFoundError("system report")
	})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
	assert.Equal(t, 1, calls)

	calls = 0
	err = retry(context.Background(), time.Millisecond, func(int, error) {}, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func seedEventTargets(t *testing.T, svc *service.Service) (*entity.Machine, *entity.User) {
	t.Helper()
	ctx := context.Background()
	machine, err := svc.CreateMachine(ctx, service.MachineInput{Name: "vm-db-01", Type: entity.MachineTypeVirtual})
	require.NoError(t, err)
	user, err := svc.CreateUser(ctx, service.UserInput{Username: "ana", FullName: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	role, err := svc.CreateRole(ctx, service.RoleInput{Name: "operador", Scope: entity.RoleScopeMachine})
	require.NoError(t, err)
	_, err = svc.AssignRole(ctx, service.UserRoleInput{UserID: user.ID, RoleID: role.ID, MachineID: &machine.ID})
	require.NoError(t, err)
	return machine, user
}

func TestChangeConsumerWarnsAboutHighImpactEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	machine, user := seedEventTargets(t, f.svc)

	_, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	require.True(t, f.cache.has(service.DashboardCacheKey))

	event, err := f.svc.CreateEvent(ctx, service.EventInput{
		Title:    "Caída de base de datos",
		Type:     entity.EventTypeOutage,
		Severity: entity.SeverityCritical,
		InfraAfectada: []service.AffectedInfraInput{
			{TargetType: entity.TargetMachine, TargetID: machine.ID},
		},
	})
	require.NoError(t, err)
	minor, err := f.svc.CreateEvent(ctx, service.EventInput{
		Title:    "Parche menor",
		Type:     entity.EventTypeMaintenance,
		Severity: entity.SeverityLow,
		InfraAfectada: []service.AffectedInfraInput{
			{TargetType: entity.TargetMachine, TargetID: machine.ID},
		},
	})
	require.NoError(t, err)

	mails := &mailRecorder{}
	consumer := NewChangeConsumer(nil, f.infra, f.svc, mails)
	ack := &ackRecorder{}
	drain(ctx, consumer.run,
		delivery(t, ack, produce.ChangeMessage{Entity: "event", Action: "created", ID: event.ID.String(), Severity: event.Severity}),
		delivery(t, ack, produce.ChangeMessage{Entity: "event", Action: "created", ID: minor.ID.String(), Severity: minor.Severity}),
		delivery(t, ack, produce.ChangeMessage{Entity: "machine", Action: "updated", ID: machine.ID.String()}),
	)

	acked, nacked, _ := ack.counts()
	assert.Equal(t, 3, acked)
	assert.Equal(t, 0, nacked)
	require.Len(t, mails.mails, 1)
	assert.Equal(t, user.Email, mails.mails[0].email)
	assert.Contains(t, mails.mails[0].subject, "Caída de base de datos")
	assert.False(t, f.cache.has(service.DashboardCacheKey))
}

func TestChangeConsumerNotificationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	machine, _ := seedEventTargets(t, f.svc)
	event, err := f.svc.CreateEvent(ctx, service.EventInput{
		Title:    "Disco lleno",
		Type:     entity.EventTypeIncident,
		Severity: entity.SeverityHigh,
		InfraAfectada: []service.AffectedInfraInput{
			{TargetType: entity.TargetMachine, TargetID: machine.ID},
		},
	})
	require.NoError(t, err)

	consumer := NewChangeConsumer(nil, f.infra, f.svc, &mailRecorder{err: errors.New("broker down")})
	consumer.backoff = time.Millisecond
	ack := &ackRecorder{}
	drain(ctx, consumer.run,
		delivery(t, ack, produce.ChangeMessage{Entity: "event", Action: "created", ID: event.ID.String(), Severity: event.Severity}),
		amqp.Delivery{Acknowledger: ack, Body: []byte("[]")},
	)

	acked, nacked, requeued := ack.counts()
	assert.Equal(t, 0, acked)
	assert.Equal(t, 2, nacked)
	assert.Equal(t, 0, requeued)
}

func TestSchedulerJobs(t *testing.T) {
	f := newFixture(t)
	rec := f.exportReport(t)

	scheduler, err := NewScheduler(f.infra, f.svc, 0)
	require.NoError(t, err)
	assert.Len(t, scheduler.cron.Entries(), 2)
	assert.Equal(t, defaultRetentionDays*24*time.Hour, scheduler.retention)

	scheduler.refreshDashboard()
	assert.True(t, f.cache.has(service.DashboardCacheKey))

	scheduler.purgeReports()
	views, err := f.svc.ReportsBySystem(context.Background(), rec.SystemID)
	require.NoError(t, err)
	assert.Len(t, views, 1, "fresh reports survive the purge")

	scheduler.retention = -time.Hour
	scheduler.purgeReports()
	views, err = f.svc.ReportsBySystem(context.Background(), rec.SystemID)
	require.NoError(t, err)
	assert.Empty(t, views)

	scheduler.Start()
	scheduler.Stop()
}
