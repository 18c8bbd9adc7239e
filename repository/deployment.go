package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeploymentFilter struct {
	ComponentID *uuid.UUID `json:"component_id"`
	MachineID   *uuid.UUID `json:"machine_id"`
	SystemID    *uuid.UUID `json:"system_id"`
	Environment string     `json:"environment"`
	Status      string     `json:"status"`
}

type DeploymentRepository struct {
	db *gorm.DB
}

func NewDeploymentRepository(db *gorm.DB) *DeploymentRepository {
	return &DeploymentRepository{db: db}
}

func (r *DeploymentRepository) Create(d *entity.Deployment) error {
	return r.db.Omit(clause.Associations).Create(d).Error
}

func (r *DeploymentRepository) Update(d *entity.Deployment) error {
	return r.db.Omit(clause.Associations).Save(d).Error
}

func (r *DeploymentRepository) FindByID(id uuid.UUID) (*entity.Deployment, error) {
	return findByID[entity.Deployment](r.db, id, "Component.System", "Machine")
}

// List returns deployments newest first with their component, system and machine.
func (r *DeploymentRepository) List(filter DeploymentFilter) ([]entity.Deployment, error) {
	q := r.db.Preload("Component.System").Preload("Machine")
	if filter.ComponentID != nil {
		q = q.Where("deployments.component_id = ?", *filter.ComponentID)
	}
	if filter.MachineID != nil {
		q = q.Where("deployments.machine_id = ?", *filter.MachineID)
	}
	if filter.SystemID != nil {
		q = q.Where("deployments.component_id IN (?)",
			r.db.Model(&entity.Component{}).Select("id").Where("system_id = ?", *filter.SystemID))
	}
	if filter.Environment != "" {
		q = q.Where("deployments.environment = ?", filter.Environment)
	}
	if filter.Status != "" {
		q = q.Where("deployments.status = ?", filter.Status)
	}

	var deployments []entity.Deployment
	err := q.Order("deployments.deployed_at DESC").Find(&deployments).Error
	return deployments, err
}

func (r *DeploymentRepository) CountByComponentID(componentID uuid.UUID) (int64, error) {
	return countWhere[entity.Deployment](r.db, "component_id = ?", componentID)
}

func (r *DeploymentRepository) CountByMachineID(machineID uuid.UUID) (int64, error) {
	return countWhere[entity.Deployment](r.db, "machine_id = ?", machineID)
}

func (r *DeploymentRepository) CountByEnvironmentSince(since time.Time) (map[string]int64, error) {
	return countGroupedBy[entity.Deployment](r.db, "environment", "deployed_at >= ?", since)
}

func (r *DeploymentRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Deployment{}, "id = ?", id).Error
}
