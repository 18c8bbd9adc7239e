package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComponentRepository struct {
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

func (r *ComponentRepository) Create(component *entity.Component) error {
	return r.db.Omit(clause.Associations).Create(component).Error
}

func (r *ComponentRepository) Update(component *entity.Component) error {
	return r.db.Omit(clause.Associations).Save(component).Error
}

func (r *ComponentRepository) FindByID(id uuid.UUID) (*entity.Component, error) {
	return findByID[entity.Component](r.db, id, "System")
}

// List returns components, optionally restricted to one system.
func (r *ComponentRepository) List(systemID *uuid.UUID) ([]entity.Component, error) {
	q := r.db.Preload("System")
	if systemID != nil {
		q = q.Where("system_id = ?", *systemID)
	}
	var components []entity.Component
	err := q.Order("name ASC").Find(&components).Error
	return components, err
}

func (r *ComponentRepository) ExistsInSystem(systemID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.Component](r.db, excludeID, "system_id = ? AND LOWER(name) = LOWER(?)", systemID, name)
}

func (r *ComponentRepository) CountBySystemID(systemID uuid.UUID) (int64, error) {
	return countWhere[entity.Component](r.db, "system_id = ?", systemID)
}

func (r *ComponentRepository) Count() (int64, error) {
	return countWhere[entity.Component](r.db, "")
}

func (r *ComponentRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Component{}, "id = ?", id).Error
}
