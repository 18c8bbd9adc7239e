package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	CriticalityLow      = "low"
	CriticalityMedium   = "medium"
	CriticalityHigh     = "high"
	CriticalityCritical = "critical"

	SystemStatusActive   = "active"
	SystemStatusInactive = "inactive"
	SystemStatusRetired  = "retired"
)

// System is a logical software system composed of components (Sistema).
type System struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Area        string    `json:"area" gorm:"type:varchar(255)"`
	Criticality string    `json:"criticality" gorm:"type:varchar(32);not null;default:'medium'"`
	Status      string    `json:"status" gorm:"type:varchar(32);not null;default:'active'"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
