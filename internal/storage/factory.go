// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/config"
	gormstorage "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/gorm"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/storage/postgres"
	sqlitestorage "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, db config.DBConfig, log *slog.Logger) (Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "storage", "type", cfg.Type)

	switch cfg.Type {
	case "postgres":
		return postgres.New(db, log), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			OutputDir:    cfg.SQLite.OutputDir,
		}, log)
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

var (
	_ Backend    = (*memory.Backend)(nil)
	_ Exportable = (*memory.Backend)(nil)
	_ Backend    = (*gormstorage.Backend)(nil)
	_ Backend    = (*postgres.Backend)(nil)
	_ Backend    = (*sqlitestorage.Backend)(nil)
	_ Exportable = (*sqlitestorage.Backend)(nil)
)
