package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentFilter struct {
	ServerID   *uuid.UUID `json:"server_id"`
	MachineID  *uuid.UUID `json:"machine_id"`
	ActiveOnly bool       `json:"active_only"`
}

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(a *entity.ServerMachineAssignment) error {
	return r.db.Omit(clause.Associations).Create(a).Error
}

func (r *AssignmentRepository) Update(a *entity.ServerMachineAssignment) error {
	return r.db.Omit(clause.Associations).Save(a).Error
}

func (r *AssignmentRepository) FindByID(id uuid.UUID) (*entity.ServerMachineAssignment, error) {
	return findByID[entity.ServerMachineAssignment](r.db, id, "Server", "Machine")
}

func (r *AssignmentRepository) List(filter AssignmentFilter) ([]entity.ServerMachineAssignment, error) {
	q := r.db.Preload("Server").Preload("Machine")
	if filter.ServerID != nil {
		q = q.Where("server_id = ?", *filter.ServerID)
	}
	if filter.MachineID != nil {
		q = q.Where("machine_id = ?", *filter.MachineID)
	}
	if filter.ActiveOnly {
		q = q.Where("released_at IS NULL")
	}

	var assignments []entity.ServerMachineAssignment
	err := q.Order("assigned_at DESC").Find(&assignments).Error
	return assignments, err
}

// FindActiveByMachineID returns the current placement of a machine, or ErrNotFound.
func (r *AssignmentRepository) FindActiveByMachineID(machineID uuid.UUID) (*entity.ServerMachineAssignment, error) {
	var a entity.ServerMachineAssignment
	err := r.db.Preload("Server").
		Where("machine_id = ? AND released_at IS NULL", machineID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) CountByServerID(serverID uuid.UUID) (int64, error) {
	return countWhere[entity.ServerMachineAssignment](r.db, "server_id = ?", serverID)
}

func (r *AssignmentRepository) CountByMachineID(machineID uuid.UUID) (int64, error) {
	return countWhere[entity.ServerMachineAssignment](r.db, "machine_id = ?", machineID)
}

func (r *AssignmentRepository) CountActive() (int64, error) {
	return countWhere[entity.ServerMachineAssignment](r.db, "released_at IS NULL")
}

func (r *AssignmentRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.ServerMachineAssignment{}, "id = ?", id).Error
}
