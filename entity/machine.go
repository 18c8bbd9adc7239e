package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MachineTypeVirtual  = "virtual"
	MachineTypePhysical = "physical"

	MachineStatusRunning        = "running"
	MachineStatusStopped        = "stopped"
	MachineStatusDecommissioned = "decommissioned"
)

// Machine is a virtual or physical machine (Maquina).
type Machine struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string     `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Hostname        string     `json:"hostname" gorm:"type:varchar(255)"`
	IPAddress       string     `json:"ip_address" gorm:"type:varchar(64);index"`
	Type            string     `json:"type" gorm:"type:varchar(32);not null;index"`
	OperatingSystem string     `json:"operating_system" gorm:"type:varchar(128)"`
	CPUCores        int        `json:"cpu_cores"`
	MemoryGB        int        `json:"memory_gb"`
	StorageGB       int        `json:"storage_gb"`
	Status          string     `json:"status" gorm:"type:varchar(32);not null;default:'running';index"`
	ClusterID       *uuid.UUID `json:"cluster_id" gorm:"type:uuid;index"`
	CreatedAt       time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Cluster *Cluster `json:"cluster,omitempty" gorm:"foreignKey:ClusterID"`
}
