// Package gormstore persists territories and exploration runs through gorm,
// over either SQLite or Postgres.
package gormstore

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/stridelands/engine/internal/model"
	"github.com/stridelands/engine/pkg/core"
)

// Backend persists claim data through a gorm connection.
type Backend struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New creates a backend over an open gorm connection.
func New(db *gorm.DB, logger *slog.Logger) *Backend {
	return &Backend{db: db, logger: logger}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveTerritory stores a validated claim and writes the assigned ID back.
func (b *Backend) SaveTerritory(t *core.Territory) error {
	row, err := model.TerritoryFromCore(*t)
	if err != nil {
		return err
	}
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save territory: %w", err)
	}
	t.ID = row.ID
	return nil
}

// Territories returns all stored territories. Rows whose boundary cannot be
// decoded are skipped with a warning rather than failing the load.
func (b *Backend) Territories() ([]core.Territory, error) {
	var rows []model.Territory
	if err := b.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load territories: %w", err)
	}

	out := make([]core.Territory, 0, len(rows))
	for _, row := range rows {
		t, err := row.TerritoryToCore()
		if err != nil {
			b.logger.Warn("Skipping corrupt territory row", "id", row.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// SaveExplorationRun stores a completed run and writes the assigned ID back.
func (b *Backend) SaveExplorationRun(r *core.ExplorationRun) error {
	row := model.ExplorationRunFromCore(*r)
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save exploration run: %w", err)
	}
	r.ID = row.ID
	return nil
}

// ExplorationRuns returns the stored runs for one owner.
func (b *Backend) ExplorationRuns(ownerID string) ([]core.ExplorationRun, error) {
	var rows []model.ExplorationRun
	if err := b.db.Where("owner_id = ?", ownerID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load exploration runs: %w", err)
	}

	out := make([]core.ExplorationRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ExplorationRunToCore())
	}
	return out, nil
}

// RecordPerformance writes an engine health snapshot.
func (b *Backend) RecordPerformance(sessionKind string, territoriesQueued, runsQueued int, lastWriteMs float32) error {
	row := model.EnginePerformance{
		Time:        time.Now().UTC(),
		SessionKind: sessionKind,
		WriteQueueLengths: model.WriteQueueLengths{
			Territories:     uint16(territoriesQueued),
			ExplorationRuns: uint16(runsQueued),
		},
		LastWriteDurationMs: lastWriteMs,
	}
	return b.db.Create(&row).Error
}
