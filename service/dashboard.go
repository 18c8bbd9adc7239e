package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/infra"
)

const (
	DashboardCacheKey    = "inventory:dashboard"
	recentEventsLimit    = 5
	deploymentWindowDays = 30
)

type CountByKey struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Dashboard is the home page aggregate.
type Dashboard struct {
	DataCenters              int64          `json:"data_centers"`
	Servers                  int64          `json:"servers"`
	Clusters                 int64          `json:"clusters"`
	Machines                 int64          `json:"machines"`
	Systems                  int64          `json:"systems"`
	Components               int64          `json:"components"`
	Users                    int64          `json:"users"`
	Events                   int64          `json:"events"`
	ActiveAssignments        int64          `json:"active_assignments"`
	MachinesByType           []CountByKey   `json:"machines_by_type"`
	MachinesByStatus         []CountByKey   `json:"machines_by_status"`
	OpenEventsBySeverity     []CountByKey   `json:"open_events_by_severity"`
	DeploymentsByEnvironment []CountByKey   `json:"deployments_by_environment"`
	RecentEvents             []entity.Event `json:"recent_events"`
	GeneratedAt              time.Time      `json:"generated_at"`
}

var (
	machineTypeOrder   = []string{entity.MachineTypeVirtual, entity.MachineTypePhysical}
	machineStatusOrder = []string{entity.MachineStatusRunning, entity.MachineStatusStopped, entity.MachineStatusDecommissioned}
	severityOrder      = []string{entity.SeverityCritical, entity.SeverityHigh, entity.SeverityMedium, entity.SeverityLow}
)

// Dashboard returns the cached aggregate, computing it on a miss.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if s.cache != nil {
		var cached Dashboard
		err := s.cache.Get(ctx, DashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, infra.ErrCacheMiss) {
			s.logger.WarningWithContextf(ctx, "[Dashboard] Cache read failed: %v", err)
		}
	}
	return s.RefreshDashboard(ctx)
}

// RefreshDashboard recomputes the aggregate and stores it in the cache.
func (s *Service) RefreshDashboard(ctx context.Context) (*Dashboard, error) {
	d, err := s.computeDashboard(ctx)
	if err != nil {
		return nil, s.wrapError(ctx, err, "dashboard")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, DashboardCacheKey, d, s.cacheTTL); err != nil {
			s.logger.WarningWithContextf(ctx, "[Dashboard] Cache write failed: %v", err)
		}
	}
	return d, nil
}

func (s *Service) InvalidateDashboard(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, DashboardCacheKey)
}

func (s *Service) computeDashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: s.now()}
	since := d.GeneratedAt.AddDate(0, 0, -deploymentWindowDays)

	var byType, byStatus, bySeverity, byEnvironment map[string]int64

	g, gctx := errgroup.WithContext(ctx)
	repo := s.db(gctx)

	count := func(dst *int64, fn func() (int64, error)) {
		g.Go(func() error {
			n, err := fn()
			*dst = n
			return err
		})
	}
	group := func(dst *map[string]int64, fn func() (map[string]int64, error)) {
		g.Go(func() error {
			m, err := fn()
			*dst = m
			return err
		})
	}

	count(&d.DataCenters, repo.DataCenterRepo.Count)
	count(&d.Servers, repo.ServerRepo.Count)
	count(&d.Clusters, repo.ClusterRepo.Count)
	count(&d.Machines, repo.MachineRepo.Count)
	count(&d.Systems, repo.SystemRepo.Count)
	count(&d.Components, repo.ComponentRepo.Count)
	count(&d.Users, repo.UserRepo.Count)
	count(&d.Events, repo.EventRepo.Count)
	count(&d.ActiveAssignments, repo.AssignmentRepo.CountActive)
	group(&byType, repo.MachineRepo.CountByType)
	group(&byStatus, repo.MachineRepo.CountByStatus)
	group(&bySeverity, repo.EventRepo.CountOpenBySeverity)
	group(&byEnvironment, func() (map[string]int64, error) {
		return repo.DeploymentRepo.CountByEnvironmentSince(since)
	})
	g.Go(func() error {
		events, err := repo.EventRepo.ListRecent(recentEventsLimit)
		d.RecentEvents = events
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.MachinesByType = orderedCounts(byType, machineTypeOrder, entity.KindMachineType)
	d.MachinesByStatus = orderedCounts(byStatus, machineStatusOrder, entity.KindMachineStatus)
	d.OpenEventsBySeverity = orderedCounts(bySeverity, severityOrder, entity.KindSeverity)
	d.DeploymentsByEnvironment = orderedCounts(byEnvironment, entity.EnvironmentOrder, entity.KindEnvironment)
	return d, nil
}

// orderedCounts lists known keys first (zeros included) and then any other
// key in name order.
func orderedCounts(counts map[string]int64, order []string, kind entity.LabelKind) []CountByKey {
	out := make([]CountByKey, 0, len(order)+len(counts))
	known := make(map[string]bool, len(order))
	for _, key := range order {
		known[key] = true
		out = append(out, CountByKey{Key: key, Label: entity.Label(kind, key), Count: counts[key]})
	}
	var extra []string
	for key := range counts {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		out = append(out, CountByKey{Key: key, Label: entity.Label(kind, key), Count: counts[key]})
	}
	return out
}
