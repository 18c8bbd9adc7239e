package repository

import (
	"context"

	"github.com/tnqbao/gau-inventory-service/infra"
	"gorm.io/gorm"
)

// ErrNotFound is returned by the FindByID lookups when no row matches.
var ErrNotFound = gorm.ErrRecordNotFound

type Repository struct {
	db *gorm.DB

	DataCenterRepo    *DataCenterRepository
	ServerRepo        *ServerRepository
	ClusterRepo       *ClusterRepository
	MachineRepo       *MachineRepository
	AssignmentRepo    *AssignmentRepository
	SystemRepo        *SystemRepository
	ComponentRepo     *ComponentRepository
	DeploymentRepo    *DeploymentRepository
	UserRepo          *UserRepository
	RoleRepo          *RoleRepository
	UserRoleRepo      *UserRoleRepository
	EventRepo         *EventRepository
	AffectedInfraRepo *AffectedInfraRepository
	ReportRepo        *ReportRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = NewRepository(infra.Postgres.DB)
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                db,
		DataCenterRepo:    NewDataCenterRepository(db),
		ServerRepo:        NewServerRepository(db),
		ClusterRepo:       NewClusterRepository(db),
		MachineRepo:       NewMachineRepository(db),
		AssignmentRepo:    NewAssignmentRepository(db),
		SystemRepo:        NewSystemRepository(db),
		ComponentRepo:     NewComponentRepository(db),
		DeploymentRepo:    NewDeploymentRepository(db),
		UserRepo:          NewUserRepository(db),
		RoleRepo:          NewRoleRepository(db),
		UserRoleRepo:      NewUserRoleRepository(db),
		EventRepo:         NewEventRepository(db),
		AffectedInfraRepo: NewAffectedInfraRepository(db),
		ReportRepo:        NewReportRepository(db),
	}
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// WithContext binds every query of the returned repository to ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return NewRepository(r.db.WithContext(ctx))
}

// Transaction runs fn inside a database transaction. Only the repository
// passed to fn may be used until it returns.
func (r *Repository) Transaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTransaction(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
