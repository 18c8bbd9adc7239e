package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/report"
	"github.com/tnqbao/gau-inventory-service/repository"
)

func (s *Service) GetSystem(ctx context.Context, id uuid.UUID) (*entity.System, error) {
	system, err := s.db(ctx).SystemRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "system")
	}
	return system, nil
}

func (s *Service) ListSystems(ctx context.Context, search string) ([]entity.System, error) {
	systems, err := s.db(ctx).SystemRepo.List(search)
	return systems, s.wrapError(ctx, err, "system")
}

func (s *Service) CreateSystem(ctx context.Context, in SystemInput) (*entity.System, error) {
	system := &entity.System{ID: uuid.New()}
	if err := s.saveSystem(ctx, system, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "system", "created", system.ID.String())
	return system, nil
}

func (s *Service) UpdateSystem(ctx context.Context, id uuid.UUID, in SystemInput) (*entity.System, error) {
	system, err := s.GetSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveSystem(ctx, system, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "system", "updated", id.String())
	return system, nil
}

func (s *Service) saveSystem(ctx context.Context, system *entity.System, in SystemInput, create bool) error {
	trim(&in.Name, &in.Area)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	exists, err := repo.SystemRepo.ExistsByName(in.Name, system.ID)
	if err := unique(exists, err, "a system with this name already exists"); err != nil {
		return s.wrapError(ctx, err, "system")
	}

	system.Name = in.Name
	system.Description = in.Description
	system.Area = in.Area
	system.Criticality = orDefault(in.Criticality, entity.CriticalityMedium)
	system.Status = orDefault(in.Status, entity.SystemStatusActive)

	if create {
		err = repo.SystemRepo.Create(system)
	} else {
		err = repo.SystemRepo.Update(system)
	}
	return s.wrapError(ctx, err, "system")
}

// DeleteSystem removes a system without components or user roles, together
// with its exported reports.
func (s *Service) DeleteSystem(ctx context.Context, id uuid.UUID) error {
	var reports []entity.SystemReport
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.SystemRepo.FindByID(id); err != nil {
			return err
		}
		if err := ensureUnused("system", id,
			dependent{"components", tx.ComponentRepo.CountBySystemID},
			dependent{"user roles", tx.UserRoleRepo.CountBySystemID},
			dependent{"affected infra records", func(id uuid.UUID) (int64, error) {
				return tx.AffectedInfraRepo.CountByTarget(entity.TargetSystem, id)
			}},
		); err != nil {
			return err
		}
		var err error
		if reports, err = tx.ReportRepo.ListBySystemID(id); err != nil {
			return err
		}
		if err := tx.ReportRepo.DeleteBySystemID(id); err != nil {
			return err
		}
		return tx.SystemRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "system")
	}
	s.removeReportObjects(ctx, reports)
	s.publishChange(ctx, "system", "deleted", id.String())
	return nil
}

func (s *Service) ComponentsBySystem(ctx context.Context, systemID uuid.UUID) ([]entity.Component, error) {
	return s.ListComponents(ctx, &systemID)
}

func (s *Service) DeploymentsBySystem(ctx context.Context, systemID uuid.UUID) ([]entity.Deployment, error) {
	return s.ListDeployments(ctx, repository.DeploymentFilter{SystemID: &systemID})
}

// DeploymentsByEnvironment returns the system deployments grouped the way the
// PDF report prints them.
func (s *Service) DeploymentsByEnvironment(ctx context.Context, systemID uuid.UUID) ([]report.EnvironmentGroup, error) {
	deployments, err := s.DeploymentsBySystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	return report.GroupDeploymentsByEnvironment(deployments), nil
}

// UsersBySystem returns each user holding a role on the system once.
func (s *Service) UsersBySystem(ctx context.Context, systemID uuid.UUID) ([]entity.User, error) {
	rows, err := s.db(ctx).UserRoleRepo.ListBySystemID(systemID)
	if err != nil {
		return nil, s.wrapError(ctx, err, "user role")
	}
	return usersOf(rows), nil
}

func (s *Service) GetComponent(ctx context.Context, id uuid.UUID) (*entity.Component, error) {
	component, err := s.db(ctx).ComponentRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "component")
	}
	return component, nil
}

func (s *Service) ListComponents(ctx context.Context, systemID *uuid.UUID) ([]entity.Component, error) {
	components, err := s.db(ctx).ComponentRepo.List(systemID)
	return components, s.wrapError(ctx, err, "component")
}

func (s *Service) CreateComponent(ctx context.Context, in ComponentInput) (*entity.Component, error) {
	component := &entity.Component{ID: uuid.New()}
	if err := s.saveComponent(ctx, component, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "component", "created", component.ID.String())
	return s.GetComponent(ctx, component.ID)
}

func (s *Service) UpdateComponent(ctx context.Context, id uuid.UUID, in ComponentInput) (*entity.Component, error) {
	component, err := s.GetComponent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveComponent(ctx, component, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "component", "updated", id.String())
	return s.GetComponent(ctx, id)
}

func (s *Service) saveComponent(ctx context.Context, component *entity.Component, in ComponentInput, create bool) error {
	trim(&in.Name, &in.Technology, &in.Version, &in.RepositoryURL)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	if err := referenced("system_id", &in.SystemID, repo.SystemRepo.FindByID); err != nil {
		return s.wrapError(ctx, err, "component")
	}
	exists, err := repo.ComponentRepo.ExistsInSystem(in.SystemID, in.Name, component.ID)
	if err := unique(exists, err, "the system already has a component with this name"); err != nil {
		return s.wrapError(ctx, err, "component")
	}

	component.SystemID = in.SystemID
	component.Name = in.Name
	component.Type = in.Type
	component.Technology = in.Technology
	component.Version = in.Version
	component.RepositoryURL = in.RepositoryURL
	component.System = nil

	if create {
		err = repo.ComponentRepo.Create(component)
	} else {
		err = repo.ComponentRepo.Update(component)
	}
	return s.wrapError(ctx, err, "component")
}

func (s *Service) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.ComponentRepo.FindByID(id); err != nil {
			return err
		}
		if err := ensureUnused("component", id,
			dependent{"deployments", tx.DeploymentRepo.CountByComponentID},
		); err != nil {
			return err
		}
		return tx.ComponentRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "component")
	}
	s.publishChange(ctx, "component", "deleted", id.String())
	return nil
}

func (s *Service) GetDeployment(ctx context.Context, id uuid.UUID) (*entity.Deployment, error) {
	d, err := s.db(ctx).DeploymentRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "deployment")
	}
	return d, nil
}

func (s *Service) ListDeployments(ctx context.Context, filter repository.DeploymentFilter) ([]entity.Deployment, error) {
	deployments, err := s.db(ctx).DeploymentRepo.List(filter)
	return deployments, s.wrapError(ctx, err, "deployment")
}

func (s *Service) CreateDeployment(ctx context.Context, in DeploymentInput) (*entity.Deployment, error) {
	d := &entity.Deployment{ID: uuid.New()}
	if err := s.saveDeployment(ctx, d, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "deployment", "created", d.ID.String())
	return s.GetDeployment(ctx, d.ID)
}

func (s *Service) UpdateDeployment(ctx context.Context, id uuid.UUID, in DeploymentInput) (*entity.Deployment, error) {
	d, err := s.GetDeployment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveDeployment(ctx, d, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "deployment", "updated", id.String())
	return s.GetDeployment(ctx, id)
}

func (s *Service) saveDeployment(ctx context.Context, d *entity.Deployment, in DeploymentInput, create bool) error {
	trim(&in.Version)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	if err := referenced("component_id", &in.ComponentID, repo.ComponentRepo.FindByID); err != nil {
		return s.wrapError(ctx, err, "deployment")
	}
	if err := referenced("machine_id", &in.MachineID, repo.MachineRepo.FindByID); err != nil {
		return s.wrapError(ctx, err, "deployment")
	}
	if err := referenced("deployed_by_id", in.DeployedByID, repo.UserRepo.FindByID); err != nil {
		return s.wrapError(ctx, err, "deployment")
	}

	d.ComponentID = in.ComponentID
	d.MachineID = in.MachineID
	d.Environment = in.Environment
	d.Version = in.Version
	switch {
	case in.DeployedAt != nil:
		d.DeployedAt = in.DeployedAt.UTC()
	case create:
		d.DeployedAt = s.now()
	}
	d.DeployedByID = in.DeployedByID
	d.Status = orDefault(in.Status, entity.DeploymentStatusSuccess)
	d.Notes = in.Notes
	d.Component, d.Machine = nil, nil

	var err error
	if create {
		err = repo.DeploymentRepo.Create(d)
	} else {
		err = repo.DeploymentRepo.Update(d)
	}
	return s.wrapError(ctx, err, "deployment")
}

func (s *Service) DeleteDeployment(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.DeploymentRepo.FindByID(id); err != nil {
			return err
		}
		return tx.DeploymentRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "deployment")
	}
	s.publishChange(ctx, "deployment", "deleted", id.String())
	return nil
}
