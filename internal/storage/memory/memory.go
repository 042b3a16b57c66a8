// Package memory stores territories and exploration runs in process memory
// and exports them to JSON on close. It is the default backend for embedded
// use where no database is available.
package memory

import (
	"sync"
	"time"

	"github.com/stridelands/engine/internal/config"
	"github.com/stridelands/engine/pkg/core"
)

// performanceSample is one engine health snapshot.
type performanceSample struct {
	Time              time.Time `json:"time"`
	SessionKind       string    `json:"sessionKind"`
	TerritoriesQueued int       `json:"territoriesQueued"`
	RunsQueued        int       `json:"runsQueued"`
	LastWriteMs       float32   `json:"lastWriteMs"`
}

// Backend stores claim data in memory and exports to JSON
type Backend struct {
	cfg config.MemoryConfig

	territories map[uint]core.Territory
	runs        []core.ExplorationRun
	performance []performanceSample

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:         cfg,
		territories: make(map[uint]core.Territory),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the stored data before the backend is discarded.
func (b *Backend) Close() error {
	return b.Export()
}

// SaveTerritory stores a validated claim, assigning it the next ID.
func (b *Backend) SaveTerritory(t *core.Territory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t.ID == 0 {
		b.idCounter++
		t.ID = b.idCounter
	} else if t.ID > b.idCounter {
		b.idCounter = t.ID
	}

	b.territories[t.ID] = *t
	return nil
}

// Territories returns all stored territories.
func (b *Backend) Territories() ([]core.Territory, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Territory, 0, len(b.territories))
	for _, t := range b.territories {
		out = append(out, t)
	}
	return out, nil
}

// SaveExplorationRun stores a completed run, assigning it the next ID.
func (b *Backend) SaveExplorationRun(r *core.ExplorationRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	r.ID = b.idCounter

	b.runs = append(b.runs, *r)
	return nil
}

// ExplorationRuns returns the stored runs for one owner.
func (b *Backend) ExplorationRuns(ownerID string) ([]core.ExplorationRun, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.ExplorationRun, 0)
	for _, r := range b.runs {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// RecordPerformance appends an engine health snapshot.
func (b *Backend) RecordPerformance(sessionKind string, territoriesQueued, runsQueued int, lastWriteMs float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.performance = append(b.performance, performanceSample{
		Time:              time.Now().UTC(),
		SessionKind:       sessionKind,
		TerritoriesQueued: territoriesQueued,
		RunsQueued:        runsQueued,
		LastWriteMs:       lastWriteMs,
	})
	return nil
}

// GetExportedFilePath returns the path of the last export, if any.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
