package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ComponentTypeFrontend = "frontend"
	ComponentTypeBackend  = "backend"
	ComponentTypeDatabase = "database"
	ComponentTypeService  = "service"
	ComponentTypeBatch    = "batch"
	ComponentTypeOther    = "other"
)

type Component struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SystemID      uuid.UUID `json:"system_id" gorm:"type:uuid;not null;uniqueIndex:idx_component_system_name"`
	Name          string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_component_system_name"`
	Type          string    `json:"type" gorm:"type:varchar(32);not null"`
	Technology    string    `json:"technology" gorm:"type:varchar(255)"`
	Version       string    `json:"version" gorm:"type:varchar(64)"`
	RepositoryURL string    `json:"repository_url" gorm:"type:varchar(1024)"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	System *System `json:"system,omitempty" gorm:"foreignKey:SystemID"`
}
