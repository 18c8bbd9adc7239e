package main

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tnqbao/gau-inventory-service/config"
	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/service"
)

var (
	envFile    string
	sqlitePath string
)

var rootCmd = &cobra.Command{
	Use:   "inventoryctl",
	Short: "Operate the infrastructure inventory database",
	Long: `inventoryctl migrates the inventory schema, imports YAML seed files and
renders system reports without going through the HTTP API.

By default it connects to the Postgres database configured by the PGPOOL_*
variables. Pass --sqlite to work on a local SQLite file instead.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(envFile); err != nil {
			log.Println("No .env file found, continuing with environment variables")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "staging.env", "env file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "use a local SQLite database file instead of Postgres")
}

// openDatabase returns a migrated database handle.
func openDatabase() (*gorm.DB, error) {
	if sqlitePath != "" {
		db, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
			NowFunc:        func() time.Time { return time.Now().UTC() },
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", sqlitePath, err)
		}
		if err := infra.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate %s: %w", sqlitePath, err)
		}
		return db, nil
	}

	cfg := config.NewConfig()
	postgres := infra.InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		return nil, fmt.Errorf("failed to connect to Postgres at %s", cfg.EnvConfig.Postgres.HOST)
	}
	return postgres.DB, nil
}

// newLocalService builds a service without cache, broker or object storage.
func newLocalService(db *gorm.DB, out io.Writer) *service.Service {
	return service.NewService(repository.NewRepository(db), infra.NewConsoleLogger(out), service.Options{})
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
