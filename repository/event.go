package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventFilter struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
	Search   string `json:"search"`
}

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(event *entity.Event) error {
	return r.db.Omit(clause.Associations).Create(event).Error
}

func (r *EventRepository) Update(event *entity.Event) error {
	return r.db.Omit(clause.Associations).Save(event).Error
}

func (r *EventRepository) FindByID(id uuid.UUID) (*entity.Event, error) {
	return findByID[entity.Event](r.db, id, "AffectedInfra")
}

func (r *EventRepository) List(filter EventFilter) ([]entity.Event, error) {
	q := r.db
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = searchClause(q, filter.Search, "title")

	var events []entity.Event
	err := q.Order("started_at DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) ListRecent(limit int) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.Order("started_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// ListByTarget returns the events that list the given infrastructure as affected.
func (r *EventRepository) ListByTarget(targetType string, targetID uuid.UUID) ([]entity.Event, error) {
	column, ok := targetColumns[targetType]
	if !ok {
		return []entity.Event{}, nil
	}
	sub := r.db.Model(&entity.AffectedInfra{}).
		Select("event_id").
		Where("target_type = ? AND "+column+" = ?", targetType, targetID)

	var events []entity.Event
	err := r.db.Where("id IN (?)", sub).Order("started_at DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) CountOpenBySeverity() (map[string]int64, error) {
	return countGroupedBy[entity.Event](r.db, "severity", "status <> ?", entity.EventStatusResolved)
}

func (r *EventRepository) Count() (int64, error) {
	return countWhere[entity.Event](r.db, "")
}

func (r *EventRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Event{}, "id = ?", id).Error
}
