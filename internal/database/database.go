package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pennywise/internal/config"
	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// AllModels lists every table owned by the API, in dependency order.
var AllModels = []interface{}{
	&models.User{},
	&models.Budget{},
	&models.Category{},
	&models.Expense{},
	&models.FeatureFlag{},
	&models.AuditLog{},
}

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config config.Database
}

// NewManager opens the configured database.
func NewManager(cfg config.Database) (*Manager, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(DSN(cfg))
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  DSN(cfg),
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &Manager{db: db, config: cfg}, nil
}

// Migrate brings the schema up to date. Postgres uses the SQL files in
// migrations/; sqlite, used for local runs, is auto-migrated from the models.
func (m *Manager) Migrate() error {
	if m.config.Driver == "sqlite" {
		if err := m.db.AutoMigrate(AllModels...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		return nil
	}
	return m.RunMigrations("file://migrations")
}

// RunMigrations applies pending SQL migrations from sourceURL.
func (m *Manager) RunMigrations(sourceURL string) error {
	log := logger.Get()
	log.Info("Running database migrations...")

	mig, err := migrate.New(sourceURL, MigrateURL(m.config))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			log.Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			log.Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
