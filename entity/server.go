package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ServerStatusActive      = "active"
	ServerStatusMaintenance = "maintenance"
	ServerStatusRetired     = "retired"
)

// Server is a physical server (Servidor).
type Server struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Hostname     string     `json:"hostname" gorm:"type:varchar(255);uniqueIndex;not null"`
	SerialNumber string     `json:"serial_number" gorm:"type:varchar(128);index"`
	Brand        string     `json:"brand" gorm:"type:varchar(128)"`
	Model        string     `json:"model" gorm:"type:varchar(128)"`
	CPUCores     int        `json:"cpu_cores"`
	MemoryGB     int        `json:"memory_gb"`
	StorageGB    int        `json:"storage_gb"`
	IPAddress    string     `json:"ip_address" gorm:"type:varchar(64)"`
	Status       string     `json:"status" gorm:"type:varchar(32);not null;default:'active';index"`
	DataCenterID *uuid.UUID `json:"data_center_id" gorm:"type:uuid;index"`
	Rack         string     `json:"rack" gorm:"type:varchar(64)"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	DataCenter *DataCenter `json:"data_center,omitempty" gorm:"foreignKey:DataCenterID"`
}
