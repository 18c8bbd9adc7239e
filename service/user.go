package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

// FormSections tells the role assignment form which target pickers to show.
type FormSections struct {
	Role    *entity.Role `json:"role"`
	Machine bool         `json:"machine"`
	System  bool         `json:"system"`
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.db(ctx).UserRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "user")
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, filter repository.UserFilter) ([]entity.User, error) {
	users, err := s.db(ctx).UserRepo.List(filter)
	return users, s.wrapError(ctx, err, "user")
}

func (s *Service) CreateUser(ctx context.Context, in UserInput) (*entity.User, error) {
	user := &entity.User{ID: uuid.New()}
	if err := s.saveUser(ctx, user, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "user", "created", user.ID.String())
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveUser(ctx, user, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "user", "updated", id.String())
	return user, nil
}

func (s *Service) saveUser(ctx context.Context, user *entity.User, in UserInput, create bool) error {
	trim(&in.Username, &in.FullName, &in.Email)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	exists, err := repo.UserRepo.ExistsByUsername(in.Username, user.ID)
	if err := unique(exists, err, "username is already taken"); err != nil {
		return s.wrapError(ctx, err, "user")
	}
	exists, err = repo.UserRepo.ExistsByEmail(in.Email, user.ID)
	if err := unique(exists, err, "email is already registered"); err != nil {
		return s.wrapError(ctx, err, "user")
	}

	user.Username = in.Username
	user.FullName = in.FullName
	user.Email = in.Email
	switch {
	case in.Active != nil:
		user.Active = *in.Active
	case create:
		user.Active = true
	}

	if create {
		err = repo.UserRepo.Create(user)
	} else {
		err = repo.UserRepo.Update(user)
	}
	return s.wrapError(ctx, err, "user")
}

// DeleteUser removes the user and every role it holds.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.UserRepo.FindByID(id); err != nil {
			return err
		}
		if err := tx.UserRoleRepo.DeleteByUserID(id); err != nil {
			return err
		}
		return tx.UserRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "user")
	}
	s.publishChange(ctx, "user", "deleted", id.String())
	return nil
}

func (s *Service) UserRoles(ctx context.Context, userID uuid.UUID) ([]entity.UserRole, error) {
	rows, err := s.db(ctx).UserRoleRepo.ListByUserID(userID)
	return rows, s.wrapError(ctx, err, "user role")
}

// MachinesByUser returns the machines the user holds roles on, once each.
func (s *Service) MachinesByUser(ctx context.Context, userID uuid.UUID) ([]entity.Machine, error) {
	rows, err := s.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	machines := make([]entity.Machine, 0, len(rows))
	for _, r := range rows {
		if r.Machine != nil {
			machines = append(machines, *r.Machine)
		}
	}
	return utils.DedupeBy(machines, func(m entity.Machine) uuid.UUID { return m.ID }), nil
}

// SystemsByUser returns the systems the user holds roles on, once each.
func (s *Service) SystemsByUser(ctx context.Context, userID uuid.UUID) ([]entity.System, error) {
	rows, err := s.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	systems := make([]entity.System, 0, len(rows))
	for _, r := range rows {
		if r.System != nil {
			systems = append(systems, *r.System)
		}
	}
	return utils.DedupeBy(systems, func(sys entity.System) uuid.UUID { return sys.ID }), nil
}

func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (*entity.Role, error) {
	role, err := s.db(ctx).RoleRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "role")
	}
	return role, nil
}

func (s *Service) ListRoles(ctx context.Context, scope string) ([]entity.Role, error) {
	roles, err := s.db(ctx).RoleRepo.List(scope)
	return roles, s.wrapError(ctx, err, "role")
}

func (s *Service) CreateRole(ctx context.Context, in RoleInput) (*entity.Role, error) {
	role := &entity.Role{ID: uuid.New()}
	if err := s.saveRole(ctx, role, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "role", "created", role.ID.String())
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, in RoleInput) (*entity.Role, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveRole(ctx, role, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "role", "updated", id.String())
	return role, nil
}

func (s *Service) saveRole(ctx context.Context, role *entity.Role, in RoleInput, create bool) error {
	trim(&in.Name)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	exists, err := repo.RoleRepo.ExistsByName(in.Name, role.ID)
	if err := unique(exists, err, "a role with this name already exists"); err != nil {
		return s.wrapError(ctx, err, "role")
	}
	if !create && in.Scope != role.Scope {
		// Existing grants were validated against the old scope.
		n, err := repo.UserRoleRepo.CountByRoleID(role.ID)
		if err != nil {
			return s.wrapError(ctx, err, "role")
		}
		if n > 0 {
			return utils.NewInUseError("role", "user roles", n)
		}
	}

	role.Name = in.Name
	role.Scope = in.Scope
	role.Description = in.Description

	if create {
		err = repo.RoleRepo.Create(role)
	} else {
		err = repo.RoleRepo.Update(role)
	}
	return s.wrapError(ctx, err, "role")
}

func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.RoleRepo.FindByID(id); err != nil {
			return err
		}
		if err := ensureUnused("role", id,
			dependent{"user roles", tx.UserRoleRepo.CountByRoleID},
		); err != nil {
			return err
		}
		return tx.RoleRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "role")
	}
	s.publishChange(ctx, "role", "deleted", id.String())
	return nil
}

// RoleFormSections derives the sections of the role assignment form from the role scope.
func (s *Service) RoleFormSections(ctx context.Context, roleID uuid.UUID) (*FormSections, error) {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return &FormSections{
		Role:    role,
		Machine: role.Scope == entity.RoleScopeMachine,
		System:  role.Scope == entity.RoleScopeSystem,
	}, nil
}

// AssignRole grants a role to a user. The role scope decides which target is
// required: machine roles need machine_id, system roles need system_id and
// global roles take neither.
func (s *Service) AssignRole(ctx context.Context, in UserRoleInput) (*entity.UserRole, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	ur := &entity.UserRole{
		ID:        uuid.New(),
		UserID:    in.UserID,
		RoleID:    in.RoleID,
		MachineID: in.MachineID,
		SystemID:  in.SystemID,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := referenced("user_id", &in.UserID, tx.UserRepo.FindByID); err != nil {
			return err
		}
		role, err := tx.RoleRepo.FindByID(in.RoleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return utils.NewValidationError("role_id", "references a missing record")
			}
			return err
		}
		if err := checkScope(role.Scope, in.MachineID, in.SystemID); err != nil {
			return err
		}
		if err := referenced("machine_id", in.MachineID, tx.MachineRepo.FindByID); err != nil {
			return err
		}
		if err := referenced("system_id", in.SystemID, tx.SystemRepo.FindByID); err != nil {
			return err
		}
		exists, err := tx.UserRoleRepo.Exists(in.UserID, in.RoleID, in.MachineID, in.SystemID)
		if err := unique(exists, err, "the user already holds this role"); err != nil {
			return err
		}
		return tx.UserRoleRepo.Create(ur)
	})
	if err != nil {
		return nil, s.wrapError(ctx, err, "user role")
	}
	s.publishChange(ctx, "user_role", "assigned", ur.ID.String())

	created, err := s.db(ctx).UserRoleRepo.FindByID(ur.ID)
	if err != nil {
		return nil, s.wrapError(ctx, err, "user role")
	}
	return created, nil
}

func (s *Service) RemoveUserRole(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.UserRoleRepo.FindByID(id); err != nil {
			return err
		}
		return tx.UserRoleRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "user role")
	}
	s.publishChange(ctx, "user_role", "removed", id.String())
	return nil
}

func checkScope(scope string, machineID, systemID *uuid.UUID) error {
	switch scope {
	case entity.RoleScopeMachine:
		if machineID == nil {
			return utils.NewValidationError("machine_id", "required for machine scoped roles")
		}
		if systemID != nil {
			return utils.NewValidationError("system_id", "not allowed for machine scoped roles")
		}
	case entity.RoleScopeSystem:
		if systemID == nil {
			return utils.NewValidationError("system_id", "required for system scoped roles")
		}
		if machineID != nil {
			return utils.NewValidationError("machine_id", "not allowed for system scoped roles")
		}
	default:
		if machineID != nil {
			return utils.NewValidationError("machine_id", "not allowed for global roles")
		}
		if systemID != nil {
			return utils.NewValidationError("system_id", "not allowed for global roles")
		}
	}
	return nil
}
