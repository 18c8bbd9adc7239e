package infra

import (
	"fmt"
	"log"
	"time"

	"github.com/tnqbao/gau-inventory-service/config"
	"github.com/tnqbao/gau-inventory-service/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresClient struct {
	DB *gorm.DB
}

func InitPostgresClient(cfg *config.EnvConfig) *PostgresClient {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Postgres.HOST,
		cfg.Postgres.Username,
		cfg.Postgres.Password,
		cfg.Postgres.Database,
		cfg.Postgres.Port,
		cfg.Postgres.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if cfg.Environment.Mode == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		log.Printf("Failed to connect to Postgres: %v", err)
		return nil
	}

	if err := Migrate(db); err != nil {
		log.Printf("Failed to migrate database schema: %v", err)
		return nil
	}

	log.Println("Connected to Postgres:", cfg.Postgres.Database+" on "+cfg.Postgres.HOST)

	return &PostgresClient{DB: db}
}

// uniqueIndexes back the one-active-assignment and one-grant-per-target rules
// at the database level. NULL targets compare equal through COALESCE.
var uniqueIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_active_machine
		ON server_machine_assignments (machine_id) WHERE released_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_roles_grant
		ON user_roles (user_id, role_id,
			COALESCE(machine_id, '00000000-0000-0000-0000-000000000000'),
			COALESCE(system_id, '00000000-0000-0000-0000-000000000000'))`,
}

// Migrate creates or updates the inventory tables.
func Migrate(db *gorm.DB) error {
	if err := autoMigrate(db); err != nil {
		return err
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.DataCenter{},
		&entity.Server{},
		&entity.Cluster{},
		&entity.Machine{},
		&entity.ServerMachineAssignment{},
		&entity.System{},
		&entity.Component{},
		&entity.Deployment{},
		&entity.User{},
		&entity.Role{},
		&entity.UserRole{},
		&entity.Event{},
		&entity.AffectedInfra{},
		&entity.SystemReport{},
	)
}

func (p *PostgresClient) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
