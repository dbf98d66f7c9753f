// Package repo implements persistence for the tutoring domain. This file
// contains database bootstrapping for SQLite (pure Go driver) and PostgreSQL,
// GORM tracing, and schema migrations.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// Storage drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a storage backend.
type Options struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	// Tracing installs the OpenTelemetry GORM plugin (spans only, no metrics).
	Tracing bool
}

// sqlitePragmas tune SQLite for one writer and many readers.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
	"PRAGMA busy_timeout=5000;",
}

// pool sizes the database/sql pool behind GORM.
type pool struct {
	maxOpen     int
	maxIdleTime time.Duration
	maxLifetime time.Duration
}

var (
	sqlitePool   = pool{maxOpen: 10, maxIdleTime: 5 * time.Minute, maxLifetime: 30 * time.Minute}
	postgresPool = pool{maxOpen: 25, maxIdleTime: 5 * time.Minute, maxLifetime: 30 * time.Minute}
)

func openGorm(d gorm.Dialector, p pool) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxOpen)
	sqlDB.SetConnMaxIdleTime(p.maxIdleTime)
	sqlDB.SetConnMaxLifetime(p.maxLifetime)
	return db, nil
}

// OpenSQLite opens (or creates) the SQLite database at path and applies
// sqlitePragmas.
func OpenSQLite(path string) (*gorm.DB, error) {
	// sqlite reports a missing directory as "out of memory (14)".
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}
	db, err := openGorm(sqlite.Open(path), sqlitePool)
	if err != nil {
		return nil, err
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec(p).Error; err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, fmt.Errorf("sqlite %s: %w", strings.TrimSuffix(p, ";"), err)
		}
	}
	return db, nil
}

// OpenPostgres connects to PostgreSQL using a libpq-style or URL DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres: empty DSN")
	}
	return openGorm(postgres.Open(dsn), postgresPool)
}

// AutoMigrate creates or updates every table the stores use.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ConversationRecord{},
		&MessageRecord{},
		&domain.Idempotency{},
	)
}

// Backend bundles the stores of one storage driver.
type Backend struct {
	Conversations ConversationBackend
	Idempotency   IdempotencyStore
	// DB is nil for the memory driver.
	DB *gorm.DB
}

// Close releases the underlying connection pool, if any.
func (b *Backend) Close() error {
	if b == nil || b.DB == nil {
		return nil
	}
	sqlDB, err := b.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open builds the backend selected by opts.Driver, migrating SQL schemas.
func Open(opts Options) (*Backend, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverMemory:
		return &Backend{Conversations: NewMemoryStore(), Idempotency: NewMemoryIdempotencyStore()}, nil
	case DriverSQLite, "":
		db, err = OpenSQLite(opts.SQLitePath)
	case DriverPostgres:
		db, err = OpenPostgres(opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("install gorm tracing: %w", err)
		}
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Backend{
		Conversations: NewConversationStore(db),
		Idempotency:   NewSQLIdempotencyStore(db),
		DB:            db,
	}, nil
}
