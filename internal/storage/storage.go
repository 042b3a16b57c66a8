// Package storage defines the persistence boundary for validated claims and
// completed exploration runs, with interchangeable backends.
package storage

import "github.com/stridelands/engine/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Territory persistence (SaveTerritory assigns ID to the passed pointer)
	SaveTerritory(t *core.Territory) error
	Territories() ([]core.Territory, error)

	// Exploration run persistence (assigns ID to the passed pointer)
	SaveExplorationRun(r *core.ExplorationRun) error
	ExplorationRuns(ownerID string) ([]core.ExplorationRun, error)

	// Engine health snapshot, written on the monitor cadence
	RecordPerformance(sessionKind string, territoriesQueued, runsQueued int, lastWriteMs float32) error
}

// Exportable is an optional interface for storage backends that can dump
// their contents to a file for the game's map frontend.
type Exportable interface {
	Export() error
	GetExportedFilePath() string
}
