package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SystemRepository struct {
	db *gorm.DB
}

func NewSystemRepository(db *gorm.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

func (r *SystemRepository) Create(system *entity.System) error {
	return r.db.Omit(clause.Associations).Create(system).Error
}

func (r *SystemRepository) Update(system *entity.System) error {
	return r.db.Omit(clause.Associations).Save(system).Error
}

func (r *SystemRepository) FindByID(id uuid.UUID) (*entity.System, error) {
	return findByID[entity.System](r.db, id)
}

func (r *SystemRepository) List(search string) ([]entity.System, error) {
	var systems []entity.System
	err := searchClause(r.db, search, "name", "area").Order("name ASC").Find(&systems).Error
	return systems, err
}

func (r *SystemRepository) ListByIDs(ids []uuid.UUID) ([]entity.System, error) {
	var systems []entity.System
	if len(ids) == 0 {
		return systems, nil
	}
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&systems).Error
	return systems, err
}

func (r *SystemRepository) ExistsByName(name string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.System](r.db, excludeID, "LOWER(name) = LOWER(?)", name)
}

func (r *SystemRepository) Count() (int64, error) {
	return countWhere[entity.System](r.db, "")
}

func (r *SystemRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.System{}, "id = ?", id).Error
}
