package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleScopeGlobal  = "global"
	RoleScopeMachine = "machine"
	RoleScopeSystem  = "system"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(128);uniqueIndex;not null"`
	FullName  string    `json:"full_name" gorm:"type:varchar(255)"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Role scope decides what a user role is attached to: nothing (global), a
// machine or a system.
type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(128);uniqueIndex;not null"`
	Scope       string    `json:"scope" gorm:"type:varchar(32);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type UserRole struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	RoleID    uuid.UUID  `json:"role_id" gorm:"type:uuid;not null;index"`
	MachineID *uuid.UUID `json:"machine_id" gorm:"type:uuid;index"`
	SystemID  *uuid.UUID `json:"system_id" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`

	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role    *Role    `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Machine *Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
	System  *System  `json:"system,omitempty" gorm:"foreignKey:SystemID"`
}
