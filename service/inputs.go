package service

import (
	"time"

	"github.com/google/uuid"
)

type DataCenterInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Location    string `json:"location" validate:"max=255"`
	Description string `json:"description"`
}

type ServerInput struct {
	Hostname     string     `json:"hostname" validate:"required,max=255"`
	SerialNumber string     `json:"serial_number" validate:"max=128"`
	Brand        string     `json:"brand" validate:"max=128"`
	Model        string     `json:"model" validate:"max=128"`
	CPUCores     int        `json:"cpu_cores" validate:"gte=0"`
	MemoryGB     int        `json:"memory_gb" validate:"gte=0"`
	StorageGB    int        `json:"storage_gb" validate:"gte=0"`
	IPAddress    string     `json:"ip_address" validate:"omitempty,ip"`
	Status       string     `json:"status" validate:"omitempty,oneof=active maintenance retired"`
	DataCenterID *uuid.UUID `json:"data_center_id"`
	Rack         string     `json:"rack" validate:"max=64"`
}

type ClusterInput struct {
	Name         string     `json:"name" validate:"required,max=255"`
	Type         string     `json:"type" validate:"required,oneof=kubernetes vmware proxmox hyperv other"`
	Description  string     `json:"description"`
	DataCenterID *uuid.UUID `json:"data_center_id"`
}

type MachineInput struct {
	Name            string     `json:"name" validate:"required,max=255"`
	Hostname        string     `json:"hostname" validate:"max=255"`
	IPAddress       string     `json:"ip_address" validate:"omitempty,ip"`
	Type            string     `json:"type" validate:"required,oneof=virtual physical"`
	OperatingSystem string     `json:"operating_system" validate:"max=128"`
	CPUCores        int        `json:"cpu_cores" validate:"gte=0"`
	MemoryGB        int        `json:"memory_gb" validate:"gte=0"`
	StorageGB       int        `json:"storage_gb" validate:"gte=0"`
	Status          string     `json:"status" validate:"omitempty,oneof=running stopped decommissioned"`
	ClusterID       *uuid.UUID `json:"cluster_id"`
}

type AssignmentInput struct {
	ServerID   uuid.UUID  `json:"server_id" validate:"required"`
	MachineID  uuid.UUID  `json:"machine_id" validate:"required"`
	AssignedAt *time.Time `json:"assigned_at"`
	ReleasedAt *time.Time `json:"released_at"`
	Notes      string     `json:"notes"`
}

type SystemInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Area        string `json:"area" validate:"max=255"`
	Criticality string `json:"criticality" validate:"omitempty,oneof=low medium high critical"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive retired"`
}

type ComponentInput struct {
	SystemID      uuid.UUID `json:"system_id" validate:"required"`
	Name          string    `json:"name" validate:"required,max=255"`
	Type          string    `json:"type" validate:"required,oneof=frontend backend database service batch other"`
	Technology    string    `json:"technology" validate:"max=255"`
	Version       string    `json:"version" validate:"max=64"`
	RepositoryURL string    `json:"repository_url" validate:"omitempty,url"`
}

type DeploymentInput struct {
	ComponentID  uuid.UUID  `json:"component_id" validate:"required"`
	MachineID    uuid.UUID  `json:"machine_id" validate:"required"`
	Environment  string     `json:"environment" validate:"required,oneof=development testing staging production"`
	Version      string     `json:"version" validate:"required,max=64"`
	DeployedAt   *time.Time `json:"deployed_at"`
	DeployedByID *uuid.UUID `json:"deployed_by_id"`
	Status       string     `json:"status" validate:"omitempty,oneof=success failed rolled_back"`
	Notes        string     `json:"notes"`
}

type UserInput struct {
	Username string `json:"username" validate:"required,max=128"`
	FullName string `json:"full_name" validate:"max=255"`
	Email    string `json:"email" validate:"required,email"`
	Active   *bool  `json:"active"`
}

type RoleInput struct {
	Name        string `json:"name" validate:"required,max=128"`
	Scope       string `json:"scope" validate:"required,oneof=global machine system"`
	Description string `json:"description"`
}

type UserRoleInput struct {
	UserID    uuid.UUID  `json:"user_id" validate:"required"`
	RoleID    uuid.UUID  `json:"role_id" validate:"required"`
	MachineID *uuid.UUID `json:"machine_id"`
	SystemID  *uuid.UUID `json:"system_id"`
}

type EventInput struct {
	Title         string                 `json:"title" validate:"required,max=255"`
	Description   string                 `json:"description"`
	Type          string                 `json:"type" validate:"required,oneof=incident maintenance change outage"`
	Severity      string                 `json:"severity" validate:"required,oneof=low medium high critical"`
	Status        string                 `json:"status" validate:"omitempty,oneof=open in_progress resolved"`
	StartedAt     *time.Time             `json:"started_at"`
	EndedAt       *time.Time             `json:"ended_at"`
	ReportedByID  *uuid.UUID             `json:"reported_by_id"`
	Metadata      map[string]interface{} `json:"metadata"`
	InfraAfectada []AffectedInfraInput   `json:"infra_afectada" validate:"dive"`
}

// AffectedInfraInput names the target by type and id; the matching foreign
// key column is picked by the service.
type AffectedInfraInput struct {
	TargetType string    `json:"target_type" validate:"required,oneof=server machine cluster system"`
	TargetID   uuid.UUID `json:"target_id" validate:"required"`
	Impact     string    `json:"impact"`
}
