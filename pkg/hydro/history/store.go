package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

const moduleName = "history"

const migrationsTable = "hydrocli_schema_migrations"

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store records upload runs. A nil-db Store (from NewDisabledStore) accepts
// every call and does nothing, so callers never branch on configuration.
type Store struct {
	db     *gorm.DB
	dbType string
}

// NewDisabledStore returns a Store that ignores all writes.
func NewDisabledStore() *Store {
	return &Store{}
}

// Open connects to the history database described by cfg and applies pending
// migrations.
func Open(cfg DatabaseConfig) (*Store, error) {
	factory, err := GetDialectorFactory(cfg.Type)
	if err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "unsupported history database type", err)
	}
	dialector, err := factory(cfg)
	if err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to build history database dialector", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to open history database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, exception.New(exception.KindConfig, moduleName, "failed to access underlying history database handle", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	s := &Store{db: db, dbType: cfg.Type}
	if err := s.migrate(sqlDB); err != nil {
		return nil, err
	}
	logger.Infof("history store ready (%s)", cfg.Type)
	return s, nil
}

// Enabled reports whether the store is backed by a database.
func (s *Store) Enabled() bool {
	return s.db != nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) migrate(sqlDB *sql.DB) error {
	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return exception.New(exception.KindConfig, moduleName, "failed to load history migrations", err)
	}
	dbDriver, err := s.migrateDriver(sqlDB)
	if err != nil {
		return exception.New(exception.KindConfig, moduleName, "failed to create history migration driver", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, s.dbType, dbDriver)
	if err != nil {
		return exception.New(exception.KindConfig, moduleName, "failed to create history migrator", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return exception.New(exception.KindConfig, moduleName, "failed to apply history migrations", err)
	}
	return nil
}

func (s *Store) migrateDriver(sqlDB *sql.DB) (database.Driver, error) {
	switch s.dbType {
	case "postgres":
		return migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{MigrationsTable: migrationsTable})
	case "mysql":
		return migratemysql.WithInstance(sqlDB, &migratemysql.Config{MigrationsTable: migrationsTable})
	case "sqlite":
		return migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", s.dbType)
	}
}

// StartRun inserts a run record and returns its generated ID.
func (s *Store) StartRun(ctx context.Context, command, project string, dryRun bool) (string, error) {
	runID := uuid.NewString()
	if s.db == nil {
		return runID, nil
	}
	run := UploadRun{
		ID:        runID,
		Command:   command,
		Project:   project,
		Status:    RunStatusStarted,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return runID, exception.New(exception.KindSubmission, moduleName, "failed to record run start", err)
	}
	return runID, nil
}

// RecordSubmission appends one series result to a run.
func (s *Store) RecordSubmission(ctx context.Context, sub SeriesSubmission) error {
	if s.db == nil {
		return nil
	}
	sub.CreatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return exception.New(exception.KindSubmission, moduleName, "failed to record series submission", err)
	}
	return nil
}

// FinishRun marks a run finished with its final status and counters.
func (s *Store) FinishRun(ctx context.Context, runID, status string, stored, failed int) error {
	if s.db == nil {
		return nil
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":        status,
		"finished_at":   &now,
		"series_stored": stored,
		"series_failed": failed,
	}
	if err := s.db.WithContext(ctx).Model(&UploadRun{}).Where("id = ?", runID).Updates(updates).Error; err != nil {
		return exception.New(exception.KindSubmission, moduleName, "failed to record run end", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]UploadRun, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var runs []UploadRun
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, exception.New(exception.KindSubmission, moduleName, "failed to query run history", err)
	}
	return runs, nil
}
