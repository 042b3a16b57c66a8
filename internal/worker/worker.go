// Package worker owns the live sessions and the write path: dispatcher
// events come in, validated territories and finished runs are staged on
// queues, and a flush drains them into the storage backend.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stridelands/engine/internal/cache"
	"github.com/stridelands/engine/internal/influx"
	"github.com/stridelands/engine/internal/logging"
	"github.com/stridelands/engine/internal/parser"
	"github.com/stridelands/engine/internal/queue"
	"github.com/stridelands/engine/internal/session"
	"github.com/stridelands/engine/internal/storage"
	"github.com/stridelands/engine/internal/track"
	"github.com/stridelands/engine/pkg/core"
)

// ErrSessionExists is returned when an owner who already has an active
// session tries to start another.
var ErrSessionExists = fmt.Errorf("owner already has an active session")

// ErrNoSession is returned when a fix or stop arrives for an owner with no
// active session.
var ErrNoSession = fmt.Errorf("no active session for owner")

// SessionConfigFunc builds the session configuration for a new session.
// The worker stays ignorant of thresholds; the caller binds them from
// configuration once.
type SessionConfigFunc func(kind core.SessionKind, ownerID string) session.Config

// Dependencies holds all dependencies for the worker manager.
type Dependencies struct {
	Territories *cache.TerritoryCache
	LogManager  *logging.Manager
	Parser      *parser.Parser
	// Influx is optional; nil disables metric points.
	Influx *influx.Manager
}

// Queues stage records between session completion and the storage flush.
type Queues struct {
	Territories *queue.Queue[core.Territory]
	Runs        *queue.Queue[core.ExplorationRun]
}

// Manager manages active sessions and the storage write path.
type Manager struct {
	deps          Dependencies
	backend       storage.Backend
	sessionConfig SessionConfigFunc
	pollInterval  time.Duration
	queues        Queues

	mu        sync.Mutex
	sessions  map[string]*session.Session
	pollStops map[string]chan struct{}
	lastWrite time.Duration
}

// NewManager creates a new worker manager. pollInterval drives the
// per-session collision poll goroutines.
func NewManager(deps Dependencies, backend storage.Backend, sessionConfig SessionConfigFunc, pollInterval time.Duration) *Manager {
	return &Manager{
		deps:          deps,
		backend:       backend,
		sessionConfig: sessionConfig,
		pollInterval:  pollInterval,
		queues: Queues{
			Territories: queue.New[core.Territory](),
			Runs:        queue.New[core.ExplorationRun](),
		},
		sessions:  make(map[string]*session.Session),
		pollStops: make(map[string]chan struct{}),
	}
}

// StartSession creates and registers a session for the owner. One active
// session per owner; the collision poller and event consumer start with it.
func (m *Manager) StartSession(kind core.SessionKind, ownerID string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[ownerID]; ok {
		return nil, ErrSessionExists
	}

	s := session.New(m.sessionConfig(kind, ownerID), m.deps.Territories, m.deps.LogManager.Logger())
	stop := make(chan struct{})
	m.sessions[ownerID] = s
	m.pollStops[ownerID] = stop

	go m.consumeEvents(ownerID, s)
	if m.pollInterval > 0 {
		go m.pollCollisions(s, stop)
	}

	m.deps.LogManager.Logger().Info("Session started",
		"kind", kind.String(), "owner", ownerID)
	return s, nil
}

// Session returns the owner's active session.
func (m *Manager) Session(ownerID string) (*session.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[ownerID]
	return s, ok
}

// ActiveSessions returns the number of registered sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StopSession ends the owner's session and returns its summary. A normally
// completed exploration run is queued for persistence.
func (m *Manager) StopSession(ownerID string) (session.Summary, error) {
	m.mu.Lock()
	s, ok := m.sessions[ownerID]
	if !ok {
		m.mu.Unlock()
		return session.Summary{}, ErrNoSession
	}
	delete(m.sessions, ownerID)
	if stop, ok := m.pollStops[ownerID]; ok {
		close(stop)
		delete(m.pollStops, ownerID)
	}
	m.mu.Unlock()

	summary := s.Stop()

	if summary.Kind == core.SessionExplore && summary.State == session.StateCompleted {
		m.queues.Runs.Push(summary.Run())
	}

	m.deps.LogManager.Logger().Info("Session stopped",
		"owner", ownerID,
		"state", summary.State.String(),
		"distance_m", summary.DistanceMeters,
		"samples", summary.SampleCount)
	return summary, nil
}

// IngestFix routes one parsed fix to the owner's session.
func (m *Manager) IngestFix(ownerID string, fix core.Fix) error {
	s, ok := m.Session(ownerID)
	if !ok {
		return ErrNoSession
	}

	ev := s.Ingest(fix)
	// Only accepted moves are worth a metric point; the first fix has no
	// speed yet.
	if m.deps.Influx != nil && ev.Outcome == track.Accepted && !ev.First {
		summary := s.Summary()
		point := influx.SessionSamplePoint(
			summary.Kind.String(), ownerID, summary.DistanceMeters, ev.SpeedKmh, fix.ObservedAt)
		if err := m.deps.Influx.WritePoint(context.Background(), influx.BucketSessionMetrics, point); err != nil {
			m.deps.LogManager.Logger().Debug("Dropping session metric point", "error", err)
		}
	}
	return nil
}

// consumeEvents drains a session's notification stream until it closes.
// Claim outcomes are finalized here because closure happens inside Ingest,
// not at an explicit stop.
func (m *Manager) consumeEvents(ownerID string, s *session.Session) {
	logger := m.deps.LogManager.Logger()

	for e := range s.Events().Receive() {
		switch e.Type {
		case session.EventClaimValidated:
			m.finalizeClaim(ownerID, s, e)
		case session.EventClaimRejected:
			logger.Info("Claim rejected",
				"owner", ownerID, "reason", e.RejectReason, "detail", e.Message)
			m.writeClaimResult(ownerID, false, 0, e.RejectReason, e.At)
		case session.EventTerminated:
			logger.Warn("Session terminated",
				"owner", ownerID, "reason", e.StopReason.String())
		case session.EventSpeedWarning:
			logger.Debug("Speed warning", "owner", ownerID, "speed_kmh", e.SpeedKmh)
		}
	}
}

// finalizeClaim turns a validated loop into a territory record, stages it
// for the flush, and makes it immediately visible to collision checks.
func (m *Manager) finalizeClaim(ownerID string, s *session.Session, e session.Event) {
	path := s.Path()
	summary := s.Summary()

	territory := core.Territory{
		OwnerID:   ownerID,
		Name:      fmt.Sprintf("claim-%s", summary.EndedAt.UTC().Format("20060102-150405")),
		Ring:      []core.Point(path),
		AreaM2:    e.AreaM2,
		Bounds:    path.Bounds(),
		ClaimedAt: summary.EndedAt,
	}
	m.queues.Territories.Push(territory)

	m.deps.LogManager.Logger().Info("Claim validated",
		"owner", ownerID, "area_m2", e.AreaM2, "vertices", len(path))
	m.writeClaimResult(ownerID, true, e.AreaM2, "", e.At)
}

func (m *Manager) writeClaimResult(ownerID string, valid bool, areaM2 float64, reason string, at time.Time) {
	if m.deps.Influx == nil {
		return
	}
	point := influx.ClaimResultPoint(ownerID, valid, areaM2, reason, at)
	if err := m.deps.Influx.WritePoint(context.Background(), influx.BucketClaimMetrics, point); err != nil {
		m.deps.LogManager.Logger().Debug("Dropping claim metric point", "error", err)
	}
}

// pollCollisions checks the session against foreign territories on a fixed
// cadence until the session leaves the active state or the worker stops it.
func (m *Manager) pollCollisions(s *session.Session, stop <-chan struct{}) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.State() != session.StateActive {
				return
			}
			s.PollCollision()
		}
	}
}

// FlushQueues drains the staged records into the backend and records the
// write as an engine performance sample.
func (m *Manager) FlushQueues(sessionKind string) error {
	territoriesQueued := m.queues.Territories.Len()
	runsQueued := m.queues.Runs.Len()
	logger := m.deps.LogManager.Logger()

	start := time.Now()
	var firstErr error

	for _, t := range m.queues.Territories.Drain() {
		if err := m.backend.SaveTerritory(&t); err != nil {
			logger.Error("Error saving territory", "owner", t.OwnerID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		// The backend assigned the ID; cache only after it exists.
		m.deps.Territories.Add(t)
	}

	for _, r := range m.queues.Runs.Drain() {
		if err := m.backend.SaveExplorationRun(&r); err != nil {
			logger.Error("Error saving exploration run", "owner", r.OwnerID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	elapsed := time.Since(start)
	m.mu.Lock()
	m.lastWrite = elapsed
	m.mu.Unlock()

	if err := m.backend.RecordPerformance(sessionKind, territoriesQueued, runsQueued,
		float32(elapsed.Milliseconds())); err != nil {
		logger.Error("Error recording performance sample", "error", err)
	}

	if m.deps.Influx != nil {
		point := influx.PerformancePoint(sessionKind, territoriesQueued, runsQueued,
			float32(elapsed.Milliseconds()), time.Now())
		if err := m.deps.Influx.WritePoint(context.Background(), influx.BucketEnginePerformance, point); err != nil {
			logger.Debug("Dropping performance metric point", "error", err)
		}
	}

	return firstErr
}

// QueueLengths reports the staged record counts for monitoring.
func (m *Manager) QueueLengths() (territories, runs int) {
	return m.queues.Territories.Len(), m.queues.Runs.Len()
}

// GetLastDBWriteDuration returns the duration of the last flush cycle.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastWrite
}
