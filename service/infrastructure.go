package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/repository"
)

func (s *Service) GetDataCenter(ctx context.Context, id uuid.UUID) (*entity.DataCenter, error) {
	dc, err := s.db(ctx).DataCenterRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "data center")
	}
	return dc, nil
}

func (s *Service) ListDataCenters(ctx context.Context) ([]entity.DataCenter, error) {
	dcs, err := s.db(ctx).DataCenterRepo.List()
	return dcs, s.wrapError(ctx, err, "data center")
}

func (s *Service) CreateDataCenter(ctx context.Context, in DataCenterInput) (*entity.DataCenter, error) {
	dc := &entity.DataCenter{ID: uuid.New()}
	if err := s.saveDataCenter(ctx, dc, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "data_center", "created", dc.ID.String())
	return dc, nil
}

func (s *Service) UpdateDataCenter(ctx context.Context, id uuid.UUID, in DataCenterInput) (*entity.DataCenter, error) {
	dc, err := s.GetDataCenter(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveDataCenter(ctx, dc, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "data_center", "updated", dc.ID.String())
	return dc, nil
}

func (s *Service) saveDataCenter(ctx context.Context, dc *entity.DataCenter, in DataCenterInput, create bool) error {
	trim(&in.Name, &in.Location)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	exists, err := repo.DataCenterRepo.ExistsByName(in.Name, dc.ID)
	if err := unique(exists, err, "a data center with this name already exists"); err != nil {
		return s.wrapError(ctx, err, "data center")
	}

	dc.Name = in.Name
	dc.Location = in.Location
	dc.Description = in.Description

	if create {
		err = repo.DataCenterRepo.Create(dc)
	} else {
		err = repo.DataCenterRepo.Update(dc)
	}
	return s.wrapError(ctx, err, "data center")
}

func (s *Service) DeleteDataCenter(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.DataCenterRepo.FindByID(id); err != nil {
			return err
		}
		if err := ensureUnused("data center", id,
			dependent{"servers", tx.ServerRepo.CountByDataCenterID},
			dependent{"clusters", tx.ClusterRepo.CountByDataCenterID},
		); err != nil {
			return err
		}
		return tx.DataCenterRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "data center")
	}
	s.publishChange(ctx, "data_center", "deleted", id.String())
	return nil
}

func (s *Service) ServersByDataCenter(ctx context.Context, dataCenterID uuid.UUID) ([]entity.Server, error) {
	servers, err := s.db(ctx).ServerRepo.ListByDataCenterID(dataCenterID)
	return servers, s.wrapError(ctx, err, "server")
}

func (s *Service) ClustersByDataCenter(ctx context.Context, dataCenterID uuid.UUID) ([]entity.Cluster, error) {
	clusters, err := s.db(ctx).ClusterRepo.ListByDataCenterID(dataCenterID)
	return clusters, s.wrapError(ctx, err, "cluster")
}

func (s *Service) GetServer(ctx context.Context, id uuid.UUID) (*entity.Server, error) {
	server, err := s.db(ctx).ServerRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "server")
	}
	return server, nil
}

func (s *Service) ListServers(ctx context.Context, search string) ([]entity.Server, error) {
	servers, err := s.db(ctx).ServerRepo.List(search)
	return servers, s.wrapError(ctx, err, "server")
}

func (s *Service) CreateServer(ctx context.Context, in ServerInput) (*entity.Server, error) {
	server := &entity.Server{ID: uuid.New()}
	if err := s.saveServer(ctx, server, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "server", "created", server.ID.String())
	return s.GetServer(ctx, server.ID)
}

func (s *Service) UpdateServer(ctx context.Context, id uuid.UUID, in ServerInput) (*entity.Server, error) {
	server, err := s.GetServer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveServer(ctx, server, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "server", "updated", id.String())
	return s.GetServer(ctx, id)
}

func (s *Service) saveServer(ctx context.Context, server *entity.Server, in ServerInput, create bool) error {
	trim(&in.Hostname, &in.SerialNumber, &in.Brand, &in.Model, &in.IPAddress, &in.Rack)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	exists, err := repo.ServerRepo.ExistsByHostname(in.Hostname, server.ID)
	if err := unique(exists, err, "a server with this hostname already exists"); err != nil {
		return s.wrapError(ctx, err, "server")
	}
	if err := referenced("data_center_id", in.DataCenterID, repo.DataCenterRepo.FindByID); err != nil {
		return s.wrapError(ctx, err, "server")
	}

	server.Hostname = in.Hostname
	server.SerialNumber = in.SerialNumber
	server.Brand = in.Brand
	server.Model = in.Model
	server.CPUCores = in.CPUCores
	server.MemoryGB = in.MemoryGB
	server.StorageGB = in.StorageGB
	server.IPAddress = in.IPAddress
	server.Status = orDefault(in.Status, entity.ServerStatusActive)
	server.DataCenterID = in.DataCenterID
	server.Rack = in.Rack
	server.DataCenter = nil

	if create {
		err = repo.ServerRepo.Create(server)
	} else {
		err = repo.ServerRepo.Update(server)
	}
	return s.wrapError(ctx, err, "server")
}

func (s *Service) DeleteServer(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.ServerRepo.FindByID(id); err != nil {
			return err
		}
		if err := ensureUnused("server", id,
			dependent{"assignments", tx.AssignmentRepo.CountByServerID},
			dependent{"affected infra records", func(id uuid.UUID) (int64, error) {
				return tx.AffectedInfraRepo.CountByTarget(entity.TargetServer, id)
			}},
		); err != nil {
			return err
		}
		return tx.ServerRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "server")
	}
	s.publishChange(ctx, "server", "deleted", id.String())
	return nil
}

// MachinesOnServer returns the machines currently placed on the server.
func (s *Service) MachinesOnServer(ctx context.Context, serverID uuid.UUID) ([]entity.Machine, error) {
	assignments, err := s.db(ctx).AssignmentRepo.List(repository.AssignmentFilter{ServerID: &serverID, ActiveOnly: true})
	if err != nil {
		return nil, s.wrapError(ctx, err, "assignment")
	}
	machines := make([]entity.Machine, 0, len(assignments))
	for _, a := range assignments {
		if a.Machine != nil {
			machines = append(machines, *a.Machine)
		}
	}
	return machines, nil
}

func (s *Service) GetCluster(ctx context.Context, id uuid.UUID) (*entity.Cluster, error) {
	cluster, err := s.db(ctx).ClusterRepo.FindByID(id)
	if err != nil {
		return nil, s.wrapError(ctx, err, "cluster")
	}
	return cluster, nil
}

func (s *Service) ListClusters(ctx context.Context, search string) ([]entity.Cluster, error) {
	clusters, err := s.db(ctx).ClusterRepo.List(search)
	return clusters, s.wrapError(ctx, err, "cluster")
}

func (s *Service) CreateCluster(ctx context.Context, in ClusterInput) (*entity.Cluster, error) {
	cluster := &entity.Cluster{ID: uuid.New()}
	if err := s.saveCluster(ctx, cluster, in, true); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "cluster", "created", cluster.ID.String())
	return s.GetCluster(ctx, cluster.ID)
}

func (s *Service) UpdateCluster(ctx context.Context, id uuid.UUID, in ClusterInput) (*entity.Cluster, error) {
	cluster, err := s.GetCluster(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.saveCluster(ctx, cluster, in, false); err != nil {
		return nil, err
	}
	s.publishChange(ctx, "cluster", "updated", id.String())
	return s.GetCluster(ctx, id)
}

func (s *Service) saveCluster(ctx context.Context, cluster *entity.Cluster, in ClusterInput, create bool) error {
	trim(&in.Name)
	if err := s.validateInput(&in); err != nil {
		return err
	}
	repo := s.db(ctx)
	exists, err := repo.ClusterRepo.ExistsByName(in.Name, cluster.ID)
	if err := unique(exists, err, "a cluster with this name already exists"); err != nil {
		return s.wrapError(ctx, err, "cluster")
	}
	if err := referenced("data_center_id", in.DataCenterID, repo.DataCenterRepo.FindByID); err != nil {
		return s.wrapError(ctx, err, "cluster")
	}

	cluster.Name = in.Name
	cluster.Type = in.Type
	cluster.Description = in.Description
	cluster.DataCenterID = in.DataCenterID
	cluster.DataCenter = nil

	if create {
		err = repo.ClusterRepo.Create(cluster)
	} else {
		err = repo.ClusterRepo.Update(cluster)
	}
	return s.wrapError(ctx, err, "cluster")
}

func (s *Service) DeleteCluster(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.ClusterRepo.FindByID(id); err != nil {
			return err
		}
		if err := ensureUnused("cluster", id,
			dependent{"machines", tx.MachineRepo.CountByClusterID},
			dependent{"affected infra records", func(id uuid.UUID) (int64, error) {
				return tx.AffectedInfraRepo.CountByTarget(entity.TargetCluster, id)
			}},
		); err != nil {
			return err
		}
		return tx.ClusterRepo.Delete(id)
	})
	if err != nil {
		return s.wrapError(ctx, err, "cluster")
	}
	s.publishChange(ctx, "cluster", "deleted", id.String())
	return nil
}

func (s *Service) MachinesByCluster(ctx context.Context, clusterID uuid.UUID) ([]entity.Machine, error) {
	machines, err := s.db(ctx).MachineRepo.List(repository.MachineFilter{ClusterID: &clusterID})
	return machines, s.wrapError(ctx, err, "machine")
}

// EventsForTarget lists the events that name the given infrastructure as affected.
func (s *Service) EventsForTarget(ctx context.Context, targetType string, id uuid.UUID) ([]entity.Event, error) {
	events, err := s.db(ctx).EventRepo.ListByTarget(targetType, id)
	return events, s.wrapError(ctx, err, "event")
}
