package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(report *entity.SystemReport) error {
	return r.db.Create(report).Error
}

func (r *ReportRepository) Update(report *entity.SystemReport) error {
	return r.db.Save(report).Error
}

func (r *ReportRepository) FindByID(id uuid.UUID) (*entity.SystemReport, error) {
	return findByID[entity.SystemReport](r.db, id)
}

func (r *ReportRepository) ListBySystemID(systemID uuid.UUID) ([]entity.SystemReport, error) {
	var reports []entity.SystemReport
	err := r.db.Where("system_id = ?", systemID).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListCreatedBefore(before time.Time) ([]entity.SystemReport, error) {
	var reports []entity.SystemReport
	err := r.db.Where("created_at < ?", before).Order("created_at ASC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.SystemReport{}, "id = ?", id).Error
}

func (r *ReportRepository) DeleteBySystemID(systemID uuid.UUID) error {
	return r.db.Where("system_id = ?", systemID).Delete(&entity.SystemReport{}).Error
}
