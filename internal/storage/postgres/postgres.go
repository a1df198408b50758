// Package postgres implements the storage.Backend interface using GORM/PostgreSQL.
// Queueing and the background writer live in the embedded GORM backend.
package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/config"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/database"
	gormstorage "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/gorm"

	"gorm.io/gorm"
)

// Backend connects to Postgres and delegates recording to the GORM backend.
type Backend struct {
	*gormstorage.Backend
	cfg   config.DBConfig
	log   *slog.Logger
	sqlDB *sql.DB
	open  func(config.DBConfig) (*gorm.DB, error)
}

// New creates a new Postgres storage backend. No connection is made until Init.
func New(cfg config.DBConfig, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		cfg:  cfg,
		log:  log,
		open: database.GetPostgresDB,
	}
}

// Init connects, validates the connection and starts the embedded GORM backend.
func (b *Backend) Init() error {
	db, err := b.open(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	b.sqlDB = sqlDB

	b.log.Info("Connected to database", "host", b.cfg.Host, "database", b.cfg.Database)

	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log})
	return b.Backend.Init()
}

// Close flushes the embedded backend and closes the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	return b.sqlDB.Close()
}
