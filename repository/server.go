package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServerRepository struct {
	db *gorm.DB
}

func NewServerRepository(db *gorm.DB) *ServerRepository {
	return &ServerRepository{db: db}
}

func (r *ServerRepository) Create(server *entity.Server) error {
	return r.db.Omit(clause.Associations).Create(server).Error
}

func (r *ServerRepository) Update(server *entity.Server) error {
	return r.db.Omit(clause.Associations).Save(server).Error
}

func (r *ServerRepository) FindByID(id uuid.UUID) (*entity.Server, error) {
	return findByID[entity.Server](r.db, id, "DataCenter")
}

func (r *ServerRepository) List(search string) ([]entity.Server, error) {
	var servers []entity.Server
	q := searchClause(r.db.Preload("DataCenter"), search, "hostname", "serial_number", "ip_address")
	err := q.Order("hostname ASC").Find(&servers).Error
	return servers, err
}

func (r *ServerRepository) ListByDataCenterID(dataCenterID uuid.UUID) ([]entity.Server, error) {
	var servers []entity.Server
	err := r.db.Where("data_center_id = ?", dataCenterID).Order("hostname ASC").Find(&servers).Error
	return servers, err
}

func (r *ServerRepository) ExistsByHostname(hostname string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.Server](r.db, excludeID, "LOWER(hostname) = LOWER(?)", hostname)
}

func (r *ServerRepository) CountByDataCenterID(dataCenterID uuid.UUID) (int64, error) {
	return countWhere[entity.Server](r.db, "data_center_id = ?", dataCenterID)
}

func (r *ServerRepository) Count() (int64, error) {
	return countWhere[entity.Server](r.db, "")
}

func (r *ServerRepository) CountByStatus() (map[string]int64, error) {
	return countGroupedBy[entity.Server](r.db, "status", "")
}

func (r *ServerRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Server{}, "id = ?", id).Error
}
