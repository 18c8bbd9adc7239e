package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(role *entity.Role) error {
	return r.db.Omit(clause.Associations).Create(role).Error
}

func (r *RoleRepository) Update(role *entity.Role) error {
	return r.db.Omit(clause.Associations).Save(role).Error
}

func (r *RoleRepository) FindByID(id uuid.UUID) (*entity.Role, error) {
	return findByID[entity.Role](r.db, id)
}

func (r *RoleRepository) List(scope string) ([]entity.Role, error) {
	q := r.db
	if scope != "" {
		q = q.Where("scope = ?", scope)
	}
	var roles []entity.Role
	err := q.Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) ExistsByName(name string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.Role](r.db, excludeID, "LOWER(name) = LOWER(?)", name)
}

func (r *RoleRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Role{}, "id = ?", id).Error
}
