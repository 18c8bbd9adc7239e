package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/infra/produce"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

// AffectedInfraView is an affected-infra row with the name of its target.
type AffectedInfraView struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"event_id"`
	TargetType  string     `json:"target_type"`
	TargetID    *uuid.UUID `json:"target_id"`
	TargetLabel string     `json:"target_label"`
	Impact      string     `json:"impact"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EventNotifier delivers warning mails; produce.EmailService implements it.
type EventNotifier interface {
	SendEventWarning(ctx context.Context, email, recipientName, subject, content string) error
}

func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	event, err := s.db(ctx).EventRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "event")
	}
	return event, nil
}

func (s *Service) ListEvents(ctx context.Context, filter repository.EventFilter) ([]entity.Event, error) {
	events, err := s.db(ctx).EventRepo.List(filter)
	return events, s.wrapError(ctx, err, "event")
}

// CreateEvent stores the event and its affected infrastructure in one transaction.
func (s *Service) CreateEvent(ctx context.Context, in EventInput) (*entity.Event, error) {
	trim(&in.Title)
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	event := &entity.Event{ID: uuid.New()}
	if err := s.applyEvent(event, in, true); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := referenced("reported_by_id", in.ReportedByID, tx.UserRepo.FindByID); err != nil {
			return err
		}
		if err := tx.EventRepo.Create(event); err != nil {
			return err
		}
		seen := make(map[string]bool, len(in.InfraAfectada))
		for i, item := range in.InfraAfectada {
			key := item.TargetType + ":" + item.TargetID.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			row, err := newAffectedInfra(tx, event.ID, item, fmt.Sprintf("infra_afectada[%d]", i))
			if err != nil {
				return err
			}
			if err := tx.AffectedInfraRepo.Create(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.wrapError(ctx, err, "event")
	}
	s.publishEvent(ctx, "created", event)
	return s.GetEvent(ctx, event.ID)
}

// UpdateEvent rewrites the event fields. Affected infrastructure is managed
// with AddAffectedInfra and RemoveAffectedInfra.
func (s *Service) UpdateEvent(ctx context.Context, id uuid.UUID, in EventInput) (*entity.Event, error) {
	trim(&in.Title)
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEvent(event, in, false); err != nil {
		return nil, err
	}
	event.AffectedInfra = nil

	repo := s.db(ctx)
	if err := referenced("reported_by_id", in.ReportedByID, repo.UserRepo.FindByID); err != nil {
		return nil, s.wrapError(ctx, err, "event")
	}
	if err := repo.EventRepo.Update(event); err != nil {
		return nil, s.wrapError(ctx, err, "event")
	}
	s.publishEvent(ctx, "updated", event)
	return s.GetEvent(ctx, id)
}

func (s *Service) applyEvent(event *entity.Event, in EventInput, create bool) error {
	var resolvedAt *time.Time
	if !create && event.Status == entity.EventStatusResolved {
		resolvedAt = event.EndedAt
	}

	event.Title = in.Title
	event.Description = in.Description
	event.Type = in.Type
	event.Severity = in.Severity
	event.Status = orDefault(in.Status, entity.EventStatusOpen)
	switch {
	case in.StartedAt != nil:
		event.StartedAt = in.StartedAt.UTC()
	case create:
		event.StartedAt = s.now()
	}
	event.EndedAt = utcPtr(in.EndedAt)
	if event.Status == entity.EventStatusResolved && event.EndedAt == nil {
		if resolvedAt != nil {
			event.EndedAt = resolvedAt
		} else {
			now := s.now()
			event.EndedAt = &now
		}
	}
	if event.EndedAt != nil && event.EndedAt.Before(event.StartedAt) {
		return utils.NewValidationError("ended_at", "must not be before started_at")
	}
	event.ReportedByID = in.ReportedByID

	event.Metadata = nil
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return utils.NewValidationError("metadata", err.Error())
		}
		event.Metadata = datatypes.JSON(raw)
	}
	return nil
}

// DeleteEvent removes the event together with its affected infrastructure.
func (s *Service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.EventRepo.FindByID(id); err != nil {
			return err
		}
		if err := tx.AffectedInfraRepo.DeleteByEventID(id); err != nil {
			return err
		}
		return tx.EventRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "event")
	}
	s.publishChange(ctx, "event", "deleted", id.String())
	return nil
}

func (s *Service) AddAffectedInfra(ctx context.Context, eventID uuid.UUID, in AffectedInfraInput) (*AffectedInfraView, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	var row *entity.AffectedInfra
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.EventRepo.FindByID(eventID); err != nil {
			return err
		}
		exists, err := tx.AffectedInfraRepo.ExistsForEvent(eventID, in.TargetType, in.TargetID)
		if err := unique(exists, err, "the event already lists this infrastructure"); err != nil {
			return err
		}
		if row, err = newAffectedInfra(tx, eventID, in, "target_id"); err != nil {
			return err
		}
		return tx.AffectedInfraRepo.Create(row)
	})
	if err != nil {
		return nil, s.wrapError(ctx, err, "event")
	}
	s.publishChange(ctx, "affected_infra", "created", row.ID.String())

	view := s.viewAffectedInfra(s.db(ctx), *row)
	return &view, nil
}

func (s *Service) RemoveAffectedInfra(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.AffectedInfraRepo.FindByID(id); err != nil {
			return err
		}
		return tx.AffectedInfraRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "affected infra")
	}
	s.publishChange(ctx, "affected_infra", "deleted", id.String())
	return nil
}

func (s *Service) AffectedInfraByEvent(ctx context.Context, eventID uuid.UUID) ([]AffectedInfraView, error) {
	repo := s.db(ctx)
	rows, err := repo.AffectedInfraRepo.ListByEventID(eventID)
	if err != nil {
		return nil, s.wrapError(ctx, err, "affected infra")
	}
	views := make([]AffectedInfraView, 0, len(rows))
	for _, row := range rows {
		views = append(views, s.viewAffectedInfra(repo, row))
	}
	return views, nil
}

func (s *Service) viewAffectedInfra(repo *repository.Repository, row entity.AffectedInfra) AffectedInfraView {
	view := AffectedInfraView{
		ID:         row.ID,
		EventID:    row.EventID,
		TargetType: row.TargetType,
		TargetID:   row.TargetID(),
		Impact:     row.Impact,
		CreatedAt:  row.CreatedAt,
	}
	if view.TargetID != nil {
		if label, err := targetLabel(repo, row.TargetType, *view.TargetID); err == nil {
			view.TargetLabel = label
		}
	}
	return view
}

// newAffectedInfra checks the target exists and sets only the matching foreign key.
func newAffectedInfra(repo *repository.Repository, eventID uuid.UUID, in AffectedInfraInput, field string) (*entity.AffectedInfra, error) {
	if _, err := targetLabel(repo, in.TargetType, in.TargetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewValidationError(field, "references a missing "+in.TargetType)
		}
		return nil, err
	}
	id := in.TargetID
	row := &entity.AffectedInfra{
		ID:         uuid.New(),
		EventID:    eventID,
		TargetType: in.TargetType,
		Impact:     in.Impact,
	}
	switch in.TargetType {
	case entity.TargetServer:
		row.ServerID = &id
	case entity.TargetMachine:
		row.MachineID = &id
	case entity.TargetCluster:
		row.ClusterID = &id
	case entity.TargetSystem:
		row.SystemID = &id
	}
	return row, nil
}

// targetLabel returns the display name of a piece of infrastructure.
func targetLabel(repo *repository.Repository, targetType string, id uuid.UUID) (string, error) {
	switch targetType {
	case entity.TargetServer:
		server, err := repo.ServerRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return server.Hostname, nil
	case entity.TargetMachine:
		machine, err := repo.MachineRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return machine.Name, nil
	case entity.TargetCluster:
		cluster, err := repo.ClusterRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return cluster.Name, nil
	case entity.TargetSystem:
		system, err := repo.SystemRepo.FindByID(id)
		if err != nil {
			return "", err
		}
		return system.Name, nil
	}
	return "", utils.NewValidationError("target_type", "unknown target type "+targetType)
}

func (s *Service) publishEvent(ctx context.Context, action string, event *entity.Event) {
	s.publish(ctx, produce.ChangeMessage{
		Entity:   "event",
		Action:   action,
		ID:       event.ID.String(),
		Severity: event.Severity,
	})
}

// EventRecipients returns the active users holding a role on a machine or
// system affected by the event. Servers and clusters reach their machines.
func (s *Service) EventRecipients(ctx context.Context, eventID uuid.UUID) ([]entity.User, error) {
	repo := s.db(ctx)
	rows, err := repo.AffectedInfraRepo.ListByEventID(eventID)
	if err != nil {
		return nil, s.wrapError(ctx, err, "affected infra")
	}

	var machineIDs, systemIDs []uuid.UUID
	for _, row := range rows {
		switch {
		case row.MachineID != nil:
			machineIDs = append(machineIDs, *row.MachineID)
		case row.SystemID != nil:
			systemIDs = append(systemIDs, *row.SystemID)
		case row.ServerID != nil:
			assignments, err := repo.AssignmentRepo.List(repository.AssignmentFilter{ServerID: row.ServerID, ActiveOnly: true})
			if err != nil {
				return nil, s.wrapError(ctx, err, "assignment")
			}
			for _, a := range assignments {
				machineIDs = append(machineIDs, a.MachineID)
			}
		case row.ClusterID != nil:
			machines, err := repo.MachineRepo.List(repository.MachineFilter{ClusterID: row.ClusterID})
			if err != nil {
				return nil, s.wrapError(ctx, err, "machine")
			}
			for _, m := range machines {
				machineIDs = append(machineIDs, m.ID)
			}
		}
	}

	var grants []entity.UserRole
	for _, id := range utils.DedupeBy(machineIDs, func(id uuid.UUID) uuid.UUID { return id }) {
		found, err := repo.UserRoleRepo.ListByMachineID(id)
		if err != nil {
			return nil, s.wrapError(ctx, err, "user role")
		}
		grants = append(grants, found...)
	}
	for _, id := range utils.DedupeBy(systemIDs, func(id uuid.UUID) uuid.UUID { return id }) {
		found, err := repo.UserRoleRepo.ListBySystemID(id)
		if err != nil {
			return nil, s.wrapError(ctx, err, "user role")
		}
		grants = append(grants, found...)
	}

	users := make([]entity.User, 0, len(grants))
	for _, u := range usersOf(grants) {
		if u.Active && u.Email != "" {
			users = append(users, u)
		}
	}
	return users, nil
}

// NotifyEvent mails every recipient of a high or critical event and returns
// how many mails were queued.
func (s *Service) NotifyEvent(ctx context.Context, eventID uuid.UUID, notifier EventNotifier) (int, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if event.Severity != entity.SeverityHigh && event.Severity != entity.SeverityCritical {
		return 0, nil
	}
	users, err := s.EventRecipients(ctx, eventID)
	if err != nil {
		return 0, err
	}

	subject := fmt.Sprintf("[%s] %s", entity.Label(entity.KindSeverity, event.Severity), event.Title)
	content := fmt.Sprintf("%s: %s\nSeveridad: %s\nEstado: %s\nInicio: %s\n\n%s",
		entity.Label(entity.KindEventType, event.Type),
		event.Title,
		entity.Label(entity.KindSeverity, event.Severity),
		entity.Label(entity.KindEventStatus, event.Status),
		utils.FormatTimestamp(event.StartedAt),
		event.Description,
	)

	sent := 0
	for _, u := range users {
		name := u.FullName
		if name == "" {
			name = u.Username
		}
		if err := notifier.SendEventWarning(ctx, u.Email, name, subject, content); err != nil {
			return sent, fmt.Errorf("failed to notify %s: %w", u.Email, err)
		}
		sent++
	}
	return sent, nil
}
