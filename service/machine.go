package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

func (s *Service) GetMachine(ctx context.Context, id uuid.UUID) (*entity.Machine, error) {
	machine, err := s.db(ctx).MachineRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "machine")
	}
	return machine, nil
}

func (s *Service) ListMachines(ctx context.Context, filter repository.MachineFilter) ([]entity.Machine, error) {
	machines, err := s.db(ctx).MachineRepo.List(filter)
	return machines, s.wrapError(ctx, err, "machine")
}

// ListAvailableMachines returns machines that can be placed on a server.
func (s *Service) ListAvailableMachines(ctx context.Context, search string) ([]entity.Machine, error) {
	machines, err := s.db(ctx).MachineRepo.ListAvailable(search)
	return machines, s.wrapError(ctx, err, "machine")
}

func (s *Service) CreateMachine(ctx context.Context, in MachineInput) (*entity.Machine, error) {
	machine := &entity.Machine{ID: uuid.New()}
	if err := s.saveMachine(ctx, machine, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "machine", "created", machine.ID.String())
	return s.GetMachine(ctx, machine.ID)
}

func (s *Service) UpdateMachine(ctx context.Context, id uuid.UUID, in MachineInput) (*entity.Machine, error) {
	machine, err := s.GetMachine(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveMachine(ctx, machine, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "machine", "updated", id.String())
	return s.GetMachine(ctx, id)
}

func (s *Service) saveMachine(ctx context.Context, machine *entity.Machine, in MachineInput, create bool) error {
	trim(&in.Name, &in.Hostname, &in.IPAddress, &in.OperatingSystem)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	exists, err := repo.MachineRepo.ExistsByName(in.Name, machine.ID)
	if err := unique(exists, err, "a machine with this name already exists"); err != nil {
		return s.wrapError(ctx, err, "machine")
	}
	if err := referenced("cluster_id", in.ClusterID, repo.ClusterRepo.FindByID); err != nil {
		return s.wrapError(ctx, err, "machine")
	}

	machine.Name = in.Name
	machine.Hostname = in.Hostname
	machine.IPAddress = in.IPAddress
	machine.Type = in.Type
	machine.OperatingSystem = in.OperatingSystem
	machine.CPUCores = in.CPUCores
	machine.MemoryGB = in.MemoryGB
	machine.StorageGB = in.StorageGB
	machine.Status = orDefault(in.Status, entity.MachineStatusRunning)
	machine.ClusterID = in.ClusterID
	machine.Cluster = nil

	if create {
		err = repo.MachineRepo.Create(machine)
	} else {
		err = repo.MachineRepo.Update(machine)
	}
	return s.wrapError(ctx, err, "machine")
}

func (s *Service) DeleteMachine(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.MachineRepo.FindByID(id); err != nil {
			return err
		}
		if err := ensureUnused("machine", id,
			dependent{"deployments", tx.DeploymentRepo.CountByMachineID},
			dependent{"assignments", tx.AssignmentRepo.CountByMachineID},
			dependent{"user roles", tx.UserRoleRepo.CountByMachineID},
			dependent{"affected infra records", func(id uuid.UUID) (int64, error) {
				return tx.AffectedInfraRepo.CountByTarget(entity.TargetMachine, id)
			}},
		); err != nil {
			return err
		}
		return tx.MachineRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "machine")
	}
	s.publishChange(ctx, "machine", "deleted", id.String())
	return nil
}

// CurrentServer returns the server a machine is placed on, or nil when unplaced.
func (s *Service) CurrentServer(ctx context.Context, machineID uuid.UUID) (*entity.Server, error) {
	a, err := s.db(ctx).AssignmentRepo.FindActiveByMachineID(machineID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrapError(ctx, err, "assignment")
	}
	return a.Server, nil
}

// UsersByMachine returns each user holding a role on the machine once.
func (s *Service) UsersByMachine(ctx context.Context, machineID uuid.UUID) ([]entity.User, error) {
	rows, err := s.db(ctx).UserRoleRepo.ListByMachineID(machineID)
	if err != nil {
		return nil, s.wrapError(ctx, err, "user role")
	}
	return usersOf(rows), nil
}

func usersOf(rows []entity.UserRole) []entity.User {
	rows = utils.DedupeBy(rows, func(r entity.UserRole) uuid.UUID { return r.UserID })
	users := make([]entity.User, 0, len(rows))
	for _, r := range rows {
		if r.User != nil {
			users = append(users, *r.User)
		}
	}
	return users
}

func (s *Service) GetAssignment(ctx context.Context, id uuid.UUID) (*entity.ServerMachineAssignment, error) {
	a, err := s.db(ctx).AssignmentRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "assignment")
	}
	return a, nil
}

func (s *Service) ListAssignments(ctx context.Context, filter repository.AssignmentFilter) ([]entity.ServerMachineAssignment, error) {
	assignments, err := s.db(ctx).AssignmentRepo.List(filter)
	return assignments, s.wrapError(ctx, err, "assignment")
}

// AssignMachine places a machine on a server. A machine holds at most one
// active assignment at a time.
func (s *Service) AssignMachine(ctx context.Context, in AssignmentInput) (*entity.ServerMachineAssignment, error) {
	trim(&in.Notes)
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	assignedAt := s.now()
	if in.AssignedAt != nil {
		assignedAt = in.AssignedAt.UTC()
	}
	if err := checkReleaseAfterAssign(assignedAt, in.ReleasedAt); err != nil {
		return nil, err
	}

	assignment := &entity.ServerMachineAssignment{
		ID:         uuid.New(),
		ServerID:   in.ServerID,
		MachineID:  in.MachineID,
		AssignedAt: assignedAt,
		ReleasedAt: utcPtr(in.ReleasedAt),
		Notes:      in.Notes,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := referenced("server_id", &in.ServerID, tx.ServerRepo.FindByID); err != nil {
			return err
		}
		if err := referenced("machine_id", &in.MachineID, tx.MachineRepo.FindByID); err != nil {
			return err
		}
		if assignment.ReleasedAt == nil {
			if err := ensureNoActiveAssignment(tx, in.MachineID, uuid.Nil); err != nil {
				return err
			}
		}
		return tx.AssignmentRepo.Create(assignment)
	})
	if err != nil {
		return nil, s.wrapError(ctx, err, "assignment")
	}
	s.publishChange(ctx, "assignment", "created", assignment.ID.String())
	return s.GetAssignment(ctx, assignment.ID)
}

// UpdateAssignment rewrites an assignment; reopening it is only allowed while
// the machine has no other active placement.
func (s *Service) UpdateAssignment(ctx context.Context, id uuid.UUID, in AssignmentInput) (*entity.ServerMachineAssignment, error) {
	trim(&in.Notes)
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		a, err := tx.AssignmentRepo.FindByID(id)
		if err != nil {
			return err
		}
		if err := referenced("server_id", &in.ServerID, tx.ServerRepo.FindByID); err != nil {
			return err
		}
		if err := referenced("machine_id", &in.MachineID, tx.MachineRepo.FindByID); err != nil {
			return err
		}
		if in.AssignedAt != nil {
			a.AssignedAt = in.AssignedAt.UTC()
		}
		if err := checkReleaseAfterAssign(a.AssignedAt, in.ReleasedAt); err != nil {
			return err
		}
		a.ServerID = in.ServerID
		a.MachineID = in.MachineID
		a.ReleasedAt = utcPtr(in.ReleasedAt)
		a.Notes = in.Notes
		a.Server, a.Machine = nil, nil

		if a.ReleasedAt == nil {
			if err := ensureNoActiveAssignment(tx, a.MachineID, a.ID); err != nil {
				return err
			}
		}
		return tx.AssignmentRepo.Update(a)
	})
	if err != nil {
		return nil, s.wrapError(ctx, err, "assignment")
	}
	s.publishChange(ctx, "assignment", "updated", id.String())
	return s.GetAssignment(ctx, id)
}

// ReleaseAssignment ends an active assignment at releasedAt (now when nil).
func (s *Service) ReleaseAssignment(ctx context.Context, id uuid.UUID, releasedAt *time.Time) (*entity.ServerMachineAssignment, error) {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		a, err := tx.AssignmentRepo.FindByID(id)
		if err != nil {
			return err
		}
		if !a.Active() {
			return utils.NewConflictError("assignment is already released")
		}
		at := s.now()
		if releasedAt != nil {
			at = releasedAt.UTC()
		}
		if err := checkReleaseAfterAssign(a.AssignedAt, &at); err != nil {
			return err
		}
		a.ReleasedAt = &at
		a.Server, a.Machine = nil, nil
		return tx.AssignmentRepo.Update(a)
	})
	if err != nil {
		return nil, s.wrapError(ctx, err, "assignment")
	}
	s.publishChange(ctx, "assignment", "released", id.String())
	return s.GetAssignment(ctx, id)
}

func (s *Service) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.AssignmentRepo.FindByID(id); err != nil {
			return err
		}
		return tx.AssignmentRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "assignment")
	}
	s.publishChange(ctx, "assignment", "deleted", id.String())
	return nil
}

func ensureNoActiveAssignment(tx *repository.Repository, machineID, excludeID uuid.UUID) error {
	active, err := tx.AssignmentRepo.FindActiveByMachineID(machineID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if active.ID == excludeID {
		return nil
	}
	hostname := active.ServerID.String()
	if active.Server != nil {
		hostname = active.Server.Hostname
	}
	return utils.NewConflictError("machine is already assigned to server " + hostname)
}

func checkReleaseAfterAssign(assignedAt time.Time, releasedAt *time.Time) error {
	if releasedAt != nil && releasedAt.Before(assignedAt) {
		return utils.NewValidationError("released_at", "must not be before assigned_at")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
