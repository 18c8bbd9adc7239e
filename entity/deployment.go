package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentTesting     = "testing"
	EnvironmentStaging     = "staging"
	EnvironmentProduction  = "production"

	DeploymentStatusSuccess    = "success"
	DeploymentStatusFailed     = "failed"
	DeploymentStatusRolledBack = "rolled_back"
)

// EnvironmentOrder is the order environments are listed in reports.
var EnvironmentOrder = []string{
	EnvironmentProduction,
	EnvironmentStaging,
	EnvironmentTesting,
	EnvironmentDevelopment,
}

// Deployment records a component version rolled out to a machine (Despliegue).
type Deployment struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ComponentID  uuid.UUID  `json:"component_id" gorm:"type:uuid;not null;index"`
	MachineID    uuid.UUID  `json:"machine_id" gorm:"type:uuid;not null;index"`
	Environment  string     `json:"environment" gorm:"type:varchar(32);not null;index"`
	Version      string     `json:"version" gorm:"type:varchar(64)"`
	DeployedAt   time.Time  `json:"deployed_at" gorm:"not null;index"`
	DeployedByID *uuid.UUID `json:"deployed_by_id" gorm:"type:uuid;index"`
	Status       string     `json:"status" gorm:"type:varchar(32);not null;default:'success'"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Component *Component `json:"component,omitempty" gorm:"foreignKey:ComponentID"`
	Machine   *Machine   `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
}
