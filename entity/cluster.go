package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClusterTypeKubernetes = "kubernetes"
	ClusterTypeVMware     = "vmware"
	ClusterTypeProxmox    = "proxmox"
	ClusterTypeHyperV     = "hyperv"
	ClusterTypeOther      = "other"
)

type Cluster struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Type         string     `json:"type" gorm:"type:varchar(32);not null"`
	Description  string     `json:"description" gorm:"type:text"`
	DataCenterID *uuid.UUID `json:"data_center_id" gorm:"type:uuid;index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	DataCenter *DataCenter `json:"data_center,omitempty" gorm:"foreignKey:DataCenterID"`
}
