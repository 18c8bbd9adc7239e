package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/service"
)

const (
	DashboardRefreshSpec = "@every 5m"
	ReportPurgeSpec      = "@daily"

	jobTimeout           = time.Minute
	defaultRetentionDays = 30
)

// Scheduler runs the periodic housekeeping jobs of the worker.
type Scheduler struct {
	cron      *cron.Cron
	infra     *infra.Infra
	service   *service.Service
	retention time.Duration
}

func NewScheduler(infra *infra.Infra, svc *service.Service, retentionDays int) (*Scheduler, error) {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		infra:     infra,
		service:   svc,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}

	if _, err := s.cron.AddFunc(DashboardRefreshSpec, s.refreshDashboard); err != nil {
		return nil, fmt.Errorf("failed to schedule dashboard refresh: %w", err)
	}
	if _, err := s.cron.AddFunc(ReportPurgeSpec, s.purgeReports); err != nil {
		return nil, fmt.Errorf("failed to schedule report purge: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.service.RefreshDashboard(ctx); err != nil {
		s.infra.Logger.ErrorWithContextf(ctx, err, "[Scheduler] Dashboard refresh failed: %v", err)
		return
	}
	s.infra.Logger.DebugWithContextf(ctx, "[Scheduler] Dashboard refreshed")
}

func (s *Scheduler) purgeReports() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	purged, err := s.service.PurgeReports(ctx, s.retention)
	if err != nil {
		s.infra.Logger.ErrorWithContextf(ctx, err, "[Scheduler] Report purge failed: %v", err)
		return
	}
	s.infra.Logger.InfoWithContextf(ctx, "[Scheduler] Purged %d reports older than %s", purged, s.retention)
}
