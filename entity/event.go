package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventTypeIncident    = "incident"
	EventTypeMaintenance = "maintenance"
	EventTypeChange      = "change"
	EventTypeOutage      = "outage"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	EventStatusOpen       = "open"
	EventStatusInProgress = "in_progress"
	EventStatusResolved   = "resolved"

	TargetServer  = "server"
	TargetMachine = "machine"
	TargetCluster = "cluster"
	TargetSystem  = "system"
)

// Event is an operational or incident event affecting infrastructure (Evento).
type Event struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string         `json:"title" gorm:"type:varchar(255);not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Type         string         `json:"type" gorm:"type:varchar(32);not null;index"`
	Severity     string         `json:"severity" gorm:"type:varchar(32);not null;index"`
	Status       string         `json:"status" gorm:"type:varchar(32);not null;default:'open';index"`
	StartedAt    time.Time      `json:"started_at" gorm:"not null;index"`
	EndedAt      *time.Time     `json:"ended_at"`
	ReportedByID *uuid.UUID     `json:"reported_by_id" gorm:"type:uuid;index"`
	Metadata     datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	AffectedInfra []AffectedInfra `json:"affected_infra,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

// AffectedInfra links an event to exactly one piece of infrastructure
// (InfraAfectada). Only the id matching TargetType is set.
type AffectedInfra struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	EventID    uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	TargetType string     `json:"target_type" gorm:"type:varchar(32);not null"`
	ServerID   *uuid.UUID `json:"server_id" gorm:"type:uuid;index"`
	MachineID  *uuid.UUID `json:"machine_id" gorm:"type:uuid;index"`
	ClusterID  *uuid.UUID `json:"cluster_id" gorm:"type:uuid;index"`
	SystemID   *uuid.UUID `json:"system_id" gorm:"type:uuid;index"`
	Impact     string     `json:"impact" gorm:"type:text"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
}

// TargetID returns the id of the referenced infrastructure.
func (a AffectedInfra) TargetID() *uuid.UUID {
	switch a.TargetType {
	case TargetServer:
		return a.ServerID
	case TargetMachine:
		return a.MachineID
	case TargetCluster:
		return a.ClusterID
	case TargetSystem:
		return a.SystemID
	}
	return nil
}
