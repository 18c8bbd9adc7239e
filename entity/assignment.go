package entity

import (
	"time"

	"github.com/google/uuid"
)

// ServerMachineAssignment places a machine on a physical server for a period of
// time. An assignment without ReleasedAt is the machine's current placement.
type ServerMachineAssignment struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ServerID   uuid.UUID  `json:"server_id" gorm:"type:uuid;not null;index"`
	MachineID  uuid.UUID  `json:"machine_id" gorm:"type:uuid;not null;index"`
	AssignedAt time.Time  `json:"assigned_at" gorm:"not null"`
	ReleasedAt *time.Time `json:"released_at" gorm:"index"`
	Notes      string     `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Server  *Server  `json:"server,omitempty" gorm:"foreignKey:ServerID"`
	Machine *Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
}

func (a ServerMachineAssignment) Active() bool {
	return a.ReleasedAt == nil
}
