package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportStatusPending   = "pending"
	ReportStatusCompleted = "completed"
	ReportStatusFailed    = "failed"
)

// SystemReport tracks an asynchronous PDF export stored in object storage.
type SystemReport struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SystemID    uuid.UUID  `json:"system_id" gorm:"type:uuid;not null;index"`
	Status      string     `json:"status" gorm:"type:varchar(32);not null;default:'pending'"`
	ObjectKey   string     `json:"object_key" gorm:"type:varchar(1024)"`
	Size        int64      `json:"size"`
	Error       string     `json:"error" gorm:"type:text"`
	RequestedBy string     `json:"requested_by" gorm:"type:varchar(64)"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;autoCreateTime;index"`
	CompletedAt *time.Time `json:"completed_at"`
}
