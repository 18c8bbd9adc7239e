package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MachineFilter struct {
	ClusterID *uuid.UUID `json:"cluster_id"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Search    string     `json:"search"`
}

type MachineRepository struct {
	db *gorm.DB
}

func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

func (r *MachineRepository) Create(machine *entity.Machine) error {
	return r.db.Omit(clause.Associations).Create(machine).Error
}

func (r *MachineRepository) Update(machine *entity.Machine) error {
	return r.db.Omit(clause.Associations).Save(machine).Error
}

func (r *MachineRepository) FindByID(id uuid.UUID) (*entity.Machine, error) {
	return findByID[entity.Machine](r.db, id, "Cluster")
}

func (r *MachineRepository) List(filter MachineFilter) ([]entity.Machine, error) {
	q := r.db.Preload("Cluster")
	if filter.ClusterID != nil {
		q = q.Where("cluster_id = ?", *filter.ClusterID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = searchClause(q, filter.Search, "name", "hostname", "ip_address")

	var machines []entity.Machine
	err := q.Order("name ASC").Find(&machines).Error
	return machines, err
}

func (r *MachineRepository) ListByIDs(ids []uuid.UUID) ([]entity.Machine, error) {
	var machines []entity.Machine
	if len(ids) == 0 {
		return machines, nil
	}
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&machines).Error
	return machines, err
}

// ListAvailable returns machines without an active server assignment.
func (r *MachineRepository) ListAvailable(search string) ([]entity.Machine, error) {
	q := r.db.Where("NOT EXISTS (SELECT 1 FROM server_machine_assignments a WHERE a.machine_id = machines.id AND a.released_at IS NULL)").
		Where("status <> ?", entity.MachineStatusDecommissioned)
	q = searchClause(q, search, "name", "hostname")

	var machines []entity.Machine
	err := q.Order("name ASC").Find(&machines).Error
	return machines, err
}

func (r *MachineRepository) ExistsByName(name string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.Machine](r.db, excludeID, "LOWER(name) = LOWER(?)", name)
}

func (r *MachineRepository) CountByClusterID(clusterID uuid.UUID) (int64, error) {
	return countWhere[entity.Machine](r.db, "cluster_id = ?", clusterID)
}

func (r *MachineRepository) Count() (int64, error) {
	return countWhere[entity.Machine](r.db, "")
}

func (r *MachineRepository) CountByType() (map[string]int64, error) {
	return countGroupedBy[entity.Machine](r.db, "type", "")
}

func (r *MachineRepository) CountByStatus() (map[string]int64, error) {
	return countGroupedBy[entity.Machine](r.db, "status", "")
}

func (r *MachineRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Machine{}, "id = ?", id).Error
}
