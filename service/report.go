package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/infra/produce"
	"github.com/tnqbao/gau-inventory-service/report"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

const reportLinkExpiry = 15 * time.Minute

// ReportView is an exported report with a short-lived download link once completed.
type ReportView struct {
	ID          uuid.UUID  `json:"id"`
	SystemID    uuid.UUID  `json:"system_id"`
	Status      string     `json:"status"`
	Size        int64      `json:"size"`
	Error       string     `json:"error"`
	RequestedBy string     `json:"requested_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	DownloadURL string     `json:"download_url"`
}

// ReportObjectKey is where a rendered report is stored in the report bucket.
func ReportObjectKey(systemID, reportID uuid.UUID) string {
	return fmt.Sprintf("reports/sistemas/%s/%s.pdf", systemID, reportID)
}

// SystemReportData gathers what the system report prints.
func (s *Service) SystemReportData(ctx context.Context, systemID uuid.UUID) (*report.SystemReportData, error) {
	system, err := s.GetSystem(ctx, systemID)
	if err != nil {
		return nil, err
	}

	var (
		components  []entity.Component
		deployments []entity.Deployment
		grants      []entity.UserRole
	)
	g, gctx := errgroup.WithContext(ctx)
	repo := s.db(gctx)
	g.Go(func() error {
		var err error
		components, err = repo.ComponentRepo.List(&systemID)
		return err
	})
	g.Go(func() error {
		var err error
		deployments, err = repo.DeploymentRepo.List(repository.DeploymentFilter{SystemID: &systemID})
		return err
	})
	g.Go(func() error {
		var err error
		grants, err = repo.UserRoleRepo.ListBySystemID(systemID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.wrapError(ctx, err, "system report")
	}

	return &report.SystemReportData{
		System:      *system,
		Components:  components,
		Groups:      report.GroupDeploymentsByEnvironment(deployments),
		Users:       userAccess(grants),
		GeneratedAt: s.now(),
	}, nil
}

// userAccess folds role grants into one entry per user listing every role name.
func userAccess(grants []entity.UserRole) []report.UserAccess {
	index := make(map[uuid.UUID]int)
	var out []report.UserAccess
	for _, g := range grants {
		if g.User == nil {
			continue
		}
		i, ok := index[g.UserID]
		if !ok {
			i = len(out)
			index[g.UserID] = i
			out = append(out, report.UserAccess{Username: g.User.Username, FullName: g.User.FullName, Email: g.User.Email})
		}
		if g.Role != nil {
			out[i].Roles = append(out[i].Roles, g.Role.Name)
		}
	}
	for i := range out {
		out[i].Roles = utils.DedupeBy(out[i].Roles, func(r string) string { return r })
	}
	return out
}

// RenderSystemReport renders the PDF and returns it with its download name.
func (s *Service) RenderSystemReport(ctx context.Context, systemID uuid.UUID) ([]byte, string, error) {
	data, err := s.SystemReportData(ctx, systemID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := report.Render(data)
	if err != nil {
		return nil, "", s.wrapError(ctx, err, "system report")
	}
	return pdf, report.FileName(data.System, data.GeneratedAt), nil
}

// ExportSystemReport records a pending export and queues it for the worker.
func (s *Service) ExportSystemReport(ctx context.Context, systemID uuid.UUID) (*entity.SystemReport, error) {
	if s.reports == nil {
		return nil, utils.NewInternalError(errors.New("report export is not configured"))
	}
	if _, err := s.GetSystem(ctx, systemID); err != nil {
		return nil, err
	}

	rec := &entity.SystemReport{
		ID:          uuid.New(),
		SystemID:    systemID,
		Status:      entity.ReportStatusPending,
		RequestedBy: ActorFromContext(ctx),
	}
	repo := s.db(ctx)
	if err := repo.ReportRepo.Create(rec); err != nil {
		return nil, s.wrapError(ctx, err, "system report")
	}

	err := s.reports.PublishSystemReport(ctx, produce.ReportJobMessage{
		ReportID:    rec.ID.String(),
		SystemID:    systemID.String(),
		RequestedBy: rec.RequestedBy,
	})
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Report] Failed to queue report %s", rec.ID)
		rec.Status = entity.ReportStatusFailed
		rec.Error = "could not queue report job"
		if err := repo.ReportRepo.Update(rec); err != nil {
			s.logger.ErrorWithContextf(ctx, err, "[Report] Failed to mark report %s as failed", rec.ID)
		}
		return rec, nil
	}

	s.publishChange(ctx, "system_report", "requested", rec.ID.String())
	return rec, nil
}

// ProcessReportJob renders a pending report into object storage. Completed
// reports are left untouched so redelivered jobs are harmless.
func (s *Service) ProcessReportJob(ctx context.Context, reportID uuid.UUID) error {
	if s.storage == nil {
		return errors.New("report storage is not configured")
	}
	repo := s.db(ctx)
	rec, err := repo.ReportRepo.FindByID(reportID)
	if err != nil {
		return s.wrapError(ctx, err, "system report")
	}
	if rec.Status == entity.ReportStatusCompleted {
		return nil
	}

	pdf, _, err := s.RenderSystemReport(ctx, rec.SystemID)
	if err != nil {
		return err
	}

	key := ReportObjectKey(rec.SystemID, rec.ID)
	size, err := s.storage.PutReport(ctx, key, pdf)
	if err != nil {
		return err
	}

	completedAt := s.now()
	rec.Status = entity.ReportStatusCompleted
	rec.ObjectKey = key
	rec.Size = size
	rec.Error = ""
	rec.CompletedAt = &completedAt
	if err := repo.ReportRepo.Update(rec); err != nil {
		return s.wrapError(ctx, err, "system report")
	}

	s.publishChange(ctx, "system_report", "completed", rec.ID.String())
	return nil
}

// FailReport marks a report as failed after the worker gave up on it.
func (s *Service) FailReport(ctx context.Context, reportID uuid.UUID, cause error) error {
	repo := s.db(ctx)
	rec, err := repo.ReportRepo.FindByID(reportID)
	if err != nil {
		return s.wrapError(ctx, err, "system report")
	}
	if rec.Status == entity.ReportStatusCompleted {
		return nil
	}
	rec.Status = entity.ReportStatusFailed
	if cause != nil {
		rec.Error = cause.Error()
	}
	return s.wrapError(ctx, repo.ReportRepo.Update(rec), "system report")
}

func (s *Service) ReportsBySystem(ctx context.Context, systemID uuid.UUID) ([]ReportView, error) {
	reports, err := s.db(ctx).ReportRepo.ListBySystemID(systemID)
	if err != nil {
		return nil, s.wrapError(ctx, err, "system report")
	}

	var system *entity.System
	views := make([]ReportView, 0, len(reports))
	for _, r := range reports {
		view := ReportView{
			ID:          r.ID,
			SystemID:    r.SystemID,
			Status:      r.Status,
			Size:        r.Size,
			Error:       r.Error,
			RequestedBy: r.RequestedBy,
			CreatedAt:   r.CreatedAt,
			CompletedAt: r.CompletedAt,
		}
		if r.Status == entity.ReportStatusCompleted && r.ObjectKey != "" && s.storage != nil {
			if system == nil {
				if system, err = s.GetSystem(ctx, systemID); err != nil {
					return nil, err
				}
			}
			name := report.FileName(*system, r.CreatedAt)
			url, err := s.storage.PresignedReportURL(ctx, r.ObjectKey, name, reportLinkExpiry)
			if err != nil {
				s.logger.WarningWithContextf(ctx, "[Report] Failed to presign %s: %v", r.ObjectKey, err)
			}
			view.DownloadURL = url
		}
		views = append(views, view)
	}
	return views, nil
}

// PurgeReports deletes reports created more than retention ago, objects included.
func (s *Service) PurgeReports(ctx context.Context, retention time.Duration) (int, error) {
	repo := s.db(ctx)
	reports, err := repo.ReportRepo.ListCreatedBefore(s.now().Add(-retention))
	if err != nil {
		return 0, s.wrapError(ctx, err, "system report")
	}
	s.removeReportObjects(ctx, reports)
	for _, r := range reports {
		if err := repo.ReportRepo.Delete(r.ID); err != nil {
			return 0, s.wrapError(ctx, err, "system report")
		}
	}
	return len(reports), nil
}

func (s *Service) removeReportObjects(ctx context.Context, reports []entity.SystemReport) {
	if s.storage == nil {
		return
	}
	for _, r := range reports {
		if r.ObjectKey == "" {
			continue
		}
		if err := s.storage.DeleteReport(ctx, r.ObjectKey); err != nil {
			s.logger.WarningWithContextf(ctx, "[Report] Failed to delete object %s: %v", r.ObjectKey, err)
		}
	}
}
