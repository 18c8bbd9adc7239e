package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRoleRepository struct {
	db *gorm.DB
}

func NewUserRoleRepository(db *gorm.DB) *UserRoleRepository {
	return &UserRoleRepository{db: db}
}

func (r *UserRoleRepository) Create(ur *entity.UserRole) error {
	return r.db.Omit(clause.Associations).Create(ur).Error
}

func (r *UserRoleRepository) FindByID(id uuid.UUID) (*entity.UserRole, error) {
	return findByID[entity.UserRole](r.db, id, "User", "Role", "Machine", "System")
}

func (r *UserRoleRepository) ListByUserID(userID uuid.UUID) ([]entity.UserRole, error) {
	var rows []entity.UserRole
	err := r.db.Preload("Role").Preload("Machine").Preload("System").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListByMachineID returns one row per role grant, so a user can appear several times.
func (r *UserRoleRepository) ListByMachineID(machineID uuid.UUID) ([]entity.UserRole, error) {
	var rows []entity.UserRole
	err := r.db.Preload("User").Preload("Role").
		Where("machine_id = ?", machineID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *UserRoleRepository) ListBySystemID(systemID uuid.UUID) ([]entity.UserRole, error) {
	var rows []entity.UserRole
	err := r.db.Preload("User").Preload("Role").
		Where("system_id = ?", systemID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Exists reports whether the exact (user, role, machine, system) grant is already present.
func (r *UserRoleRepository) Exists(userID, roleID uuid.UUID, machineID, systemID *uuid.UUID) (bool, error) {
	q := r.db.Model(&entity.UserRole{}).Where("user_id = ? AND role_id = ?", userID, roleID)
	if machineID != nil {
		q = q.Where("machine_id = ?", *machineID)
	} else {
		q = q.Where("machine_id IS NULL")
	}
	if systemID != nil {
		q = q.Where("system_id = ?", *systemID)
	} else {
		q = q.Where("system_id IS NULL")
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRoleRepository) CountByRoleID(roleID uuid.UUID) (int64, error) {
	return countWhere[entity.UserRole](r.db, "role_id = ?", roleID)
}

func (r *UserRoleRepository) CountByMachineID(machineID uuid.UUID) (int64, error) {
	return countWhere[entity.UserRole](r.db, "machine_id = ?", machineID)
}

func (r *UserRoleRepository) CountBySystemID(systemID uuid.UUID) (int64, error) {
	return countWhere[entity.UserRole](r.db, "system_id = ?", systemID)
}

func (r *UserRoleRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.UserRole{}, "id = ?", id).Error
}

func (r *UserRoleRepository) DeleteByUserID(userID uuid.UUID) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.UserRole{}).Error
}
