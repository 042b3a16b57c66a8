package worker

import (
	"fmt"

	"github.com/stridelands/engine/internal/dispatcher"
)

// RegisterHandlers registers all event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Session lifecycle - sync (the session must exist before fixes arrive)
	d.Register(":SESSION:START:", m.handleSessionStart, dispatcher.Logged())
	d.Register(":SESSION:STOP:", m.handleSessionStop, dispatcher.Logged())

	// High-volume location stream - buffered
	d.Register(":FIX:", m.handleFix, dispatcher.Buffered(1000), dispatcher.Logged())

	// Territory snapshot load - sync (collision checks depend on it)
	d.Register(":TERRITORY:LOAD:", m.handleTerritoryLoad, dispatcher.Logged())

	// Manual flush of staged records - sync
	d.Register(":FLUSH:", m.handleFlush, dispatcher.Logged())
}

// handleSessionStart expects [kind, ownerID].
func (m *Manager) handleSessionStart(e dispatcher.Event) (any, error) {
	start, err := m.deps.Parser.ParseSessionStart(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	if _, err := m.StartSession(start.Kind, start.OwnerID); err != nil {
		return nil, fmt.Errorf("failed to start session for %s: %w", start.OwnerID, err)
	}
	return nil, nil
}

// handleSessionStop expects [ownerID] and returns the final state string.
func (m *Manager) handleSessionStop(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("session stop requires 1 arg, got %d", len(e.Args))
	}

	summary, err := m.StopSession(e.Args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to stop session for %s: %w", e.Args[0], err)
	}
	return summary.State.String(), nil
}

// handleFix expects [ownerID, latitude, longitude, accuracyMeters, timestamp].
func (m *Manager) handleFix(e dispatcher.Event) (any, error) {
	if len(e.Args) < 5 {
		return nil, fmt.Errorf("fix requires 5 args, got %d", len(e.Args))
	}

	fix, err := m.deps.Parser.ParseFix(e.Args[1:])
	if err != nil {
		return nil, fmt.Errorf("failed to parse fix: %w", err)
	}

	if err := m.IngestFix(e.Args[0], fix); err != nil {
		return nil, fmt.Errorf("failed to ingest fix for %s: %w", e.Args[0], err)
	}
	return nil, nil
}

// handleTerritoryLoad expects [territoriesJSON] and replaces the cache with
// the delivered snapshot.
func (m *Manager) handleTerritoryLoad(e dispatcher.Event) (any, error) {
	territories, err := m.deps.Parser.ParseTerritories(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to load territories: %w", err)
	}

	m.deps.Territories.ReplaceAll(territories)
	m.deps.LogManager.Logger().Info("Territory cache replaced", "count", len(territories))
	return len(territories), nil
}

// handleFlush drains the staged queues into storage.
func (m *Manager) handleFlush(e dispatcher.Event) (any, error) {
	if err := m.FlushQueues("manual"); err != nil {
		return nil, fmt.Errorf("failed to flush queues: %w", err)
	}
	return nil, nil
}
