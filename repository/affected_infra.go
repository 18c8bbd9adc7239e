package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var targetColumns = map[string]string{
	entity.TargetServer:  "server_id",
	entity.TargetMachine: "machine_id",
	entity.TargetCluster: "cluster_id",
	entity.TargetSystem:  "system_id",
}

type AffectedInfraRepository struct {
	db *gorm.DB
}

func NewAffectedInfraRepository(db *gorm.DB) *AffectedInfraRepository {
	return &AffectedInfraRepository{db: db}
}

func (r *AffectedInfraRepository) Create(a *entity.AffectedInfra) error {
	return r.db.Omit(clause.Associations).Create(a).Error
}

func (r *AffectedInfraRepository) FindByID(id uuid.UUID) (*entity.AffectedInfra, error) {
	return findByID[entity.AffectedInfra](r.db, id)
}

func (r *AffectedInfraRepository) ListByEventID(eventID uuid.UUID) ([]entity.AffectedInfra, error) {
	var rows []entity.AffectedInfra
	err := r.db.Where("event_id = ?", eventID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *AffectedInfraRepository) ExistsForEvent(eventID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	column, ok := targetColumns[targetType]
	if !ok {
		return false, nil
	}
	return existsWhere[entity.AffectedInfra](r.db, uuid.Nil, "event_id = ? AND target_type = ? AND "+column+" = ?", eventID, targetType, targetID)
}

// CountByTarget counts affected-infra rows pointing at the given infrastructure.
func (r *AffectedInfraRepository) CountByTarget(targetType string, targetID uuid.UUID) (int64, error) {
	column, ok := targetColumns[targetType]
	if !ok {
		return 0, nil
	}
	return countWhere[entity.AffectedInfra](r.db, "target_type = ? AND "+column+" = ?", targetType, targetID)
}

func (r *AffectedInfraRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.AffectedInfra{}, "id = ?", id).Error
}

func (r *AffectedInfraRepository) DeleteByEventID(eventID uuid.UUID) error {
	return r.db.Where("event_id = ?", eventID).Delete(&entity.AffectedInfra{}).Error
}
