package storage

import (
	"fmt"
	"log/slog"

	"github.com/stridelands/engine/internal/config"
	"github.com/stridelands/engine/internal/database"
	"github.com/stridelands/engine/internal/storage/gormstore"
	"github.com/stridelands/engine/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return gormstore.New(db, logger), nil
	case "sqlite":
		db, err := database.GetSqliteDBStandalone(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return gormstore.New(db, logger), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
