package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DataCenterRepository struct {
	db *gorm.DB
}

func NewDataCenterRepository(db *gorm.DB) *DataCenterRepository {
	return &DataCenterRepository{db: db}
}

func (r *DataCenterRepository) Create(dc *entity.DataCenter) error {
	return r.db.Omit(clause.Associations).Create(dc).Error
}

func (r *DataCenterRepository) Update(dc *entity.DataCenter) error {
	return r.db.Omit(clause.Associations).Save(dc).Error
}

func (r *DataCenterRepository) FindByID(id uuid.UUID) (*entity.DataCenter, error) {
	return findByID[entity.DataCenter](r.db, id)
}

func (r *DataCenterRepository) List() ([]entity.DataCenter, error) {
	var dcs []entity.DataCenter
	err := r.db.Order("name ASC").Find(&dcs).Error
	return dcs, err
}

func (r *DataCenterRepository) ExistsByName(name string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.DataCenter](r.db, excludeID, "LOWER(name) = LOWER(?)", name)
}

func (r *DataCenterRepository) Count() (int64, error) {
	return countWhere[entity.DataCenter](r.db, "")
}

func (r *DataCenterRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.DataCenter{}, "id = ?", id).Error
}
