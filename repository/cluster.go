package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClusterRepository struct {
	db *gorm.DB
}

func NewClusterRepository(db *gorm.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

func (r *ClusterRepository) Create(cluster *entity.Cluster) error {
	return r.db.Omit(clause.Associations).Create(cluster).Error
}

func (r *ClusterRepository) Update(cluster *entity.Cluster) error {
	return r.db.Omit(clause.Associations).Save(cluster).Error
}

func (r *ClusterRepository) FindByID(id uuid.UUID) (*entity.Cluster, error) {
	return findByID[entity.Cluster](r.db, id, "DataCenter")
}

func (r *ClusterRepository) List(search string) ([]entity.Cluster, error) {
	var clusters []entity.Cluster
	q := searchClause(r.db.Preload("DataCenter"), search, "name")
	err := q.Order("name ASC").Find(&clusters).Error
	return clusters, err
}

func (r *ClusterRepository) ListByDataCenterID(dataCenterID uuid.UUID) ([]entity.Cluster, error) {
	var clusters []entity.Cluster
	err := r.db.Where("data_center_id = ?", dataCenterID).Order("name ASC").Find(&clusters).Error
	return clusters, err
}

func (r *ClusterRepository) ExistsByName(name string, excludeID uuid.UUID) (bool, error) {
	return existsWhere[entity.Cluster](r.db, excludeID, "LOWER(name) = LOWER(?)", name)
}

func (r *ClusterRepository) CountByDataCenterID(dataCenterID uuid.UUID) (int64, error) {
	return countWhere[entity.Cluster](r.db, "data_center_id = ?", dataCenterID)
}

func (r *ClusterRepository) Count() (int64, error) {
	return countWhere[entity.Cluster](r.db, "")
}

func (r *ClusterRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Cluster{}, "id = ?", id).Error
}
