package worker

import (
	"testing"
	"time"

	"github.com/stridelands/engine/internal/cache"
	"github.com/stridelands/engine/internal/collision"
	"github.com/stridelands/engine/internal/config"
	"github.com/stridelands/engine/internal/dispatcher"
	"github.com/stridelands/engine/internal/logging"
	"github.com/stridelands/engine/internal/parser"
	"github.com/stridelands/engine/internal/session"
	"github.com/stridelands/engine/internal/storage/memory"
	"github.com/stridelands/engine/internal/track"
	"github.com/stridelands/engine/internal/validate"
	"github.com/stridelands/engine/pkg/core"
)

const metersPerDegree = 111320.0

func testSessionConfig(kind core.SessionKind, ownerID string) session.Config {
	return session.Config{
		Kind:    kind,
		OwnerID: ownerID,
		Filter: track.FilterConfig{
			MaxAccuracyMeters:       50,
			MinInterval:             time.Second,
			MinRecordDistanceMeters: 2,
			MaxSingleMoveMeters:     100,
			CheckAccuracy:           true,
		},
		Guard: track.GuardConfig{
			WarnKmh:      15,
			HardKmh:      30,
			GraceTimeout: 10 * time.Second,
		},
		Closure: validate.ClosureConfig{
			MinimumPathPoints: 10,
			ThresholdMeters:   30,
		},
		Validation: validate.Config{
			MinimumPathPoints:  10,
			MinimumDistanceM:   50,
			MinimumAreaM2:      100,
			SeamExemptSegments: 2,
		},
		Bands: collision.DefaultBands,
	}
}

// newTestManager wires a manager over the in-memory backend with collision
// polling disabled; tests that need polling pass their own interval.
func newTestManager(t *testing.T, pollInterval time.Duration) (*Manager, *cache.TerritoryCache, *memory.Backend) {
	t.Helper()

	territories := cache.NewTerritoryCache()
	logManager := logging.NewManager()
	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})

	deps := Dependencies{
		Territories: territories,
		LogManager:  logManager,
		Parser:      parser.NewParser(logManager.Logger()),
	}
	return NewManager(deps, backend, testSessionConfig, pollInterval), territories, backend
}

func newTestDispatcher(t *testing.T, m *Manager) *dispatcher.Dispatcher {
	t.Helper()

	d, err := dispatcher.New(m.deps.LogManager.Logger())
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	m.RegisterHandlers(d)
	return d
}

func fixAt(latM, lonM float64, at time.Time) core.Fix {
	return core.Fix{
		Point: core.Point{
			Latitude:  latM / metersPerDegree,
			Longitude: lonM / metersPerDegree,
		},
		AccuracyMeters: 10,
		ObservedAt:     at,
	}
}

func TestRegisterHandlers_RegistersAllCommands(t *testing.T) {
	m, _, _ := newTestManager(t, 0)
	d := newTestDispatcher(t, m)

	expectedCommands := []string{
		":SESSION:START:",
		":SESSION:STOP:",
		":FIX:",
		":TERRITORY:LOAD:",
		":FLUSH:",
	}

	for _, cmd := range expectedCommands {
		if !d.HasHandler(cmd) {
			t.Errorf("expected handler for %s to be registered", cmd)
		}
	}
}

func TestStartSession_DuplicateOwnerRejected(t *testing.T) {
	m, _, _ := newTestManager(t, 0)

	if _, err := m.StartSession(core.SessionExplore, "player-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.StartSession(core.SessionClaim, "player-1"); err != ErrSessionExists {
		t.Errorf("expected ErrSessionExists, got %v", err)
	}
	if m.ActiveSessions() != 1 {
		t.Errorf("expected 1 active session, got %d", m.ActiveSessions())
	}
}

func TestStopSession_NoSession(t *testing.T) {
	m, _, _ := newTestManager(t, 0)

	if _, err := m.StopSession("player-1"); err != ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestIngestFix_NoSession(t *testing.T) {
	m, _, _ := newTestManager(t, 0)

	err := m.IngestFix("player-1", fixAt(0, 0, time.Now()))
	if err != ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestExploreSession_RunQueuedAndFlushed(t *testing.T) {
	m, _, backend := newTestManager(t, 0)

	if _, err := m.StartSession(core.SessionExplore, "player-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	at := time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC)
	for i := 0; i <= 10; i++ {
		if err := m.IngestFix("player-1", fixAt(0, float64(i)*10, at)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		at = at.Add(5 * time.Second)
	}

	summary, err := m.StopSession("player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.State != session.StateCompleted {
		t.Fatalf("expected completed, got %s", summary.State)
	}

	if _, runs := m.QueueLengths(); runs != 1 {
		t.Fatalf("expected 1 queued run, got %d", runs)
	}

	if err := m.FlushQueues("explore"); err != nil {
		t.Fatalf("FlushQueues failed: %v", err)
	}

	runs, err := backend.ExplorationRuns("player-1")
	if err != nil {
		t.Fatalf("ExplorationRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 persisted run, got %d", len(runs))
	}
	if runs[0].DistanceMeters < 99 || runs[0].DistanceMeters > 101 {
		t.Errorf("expected about 100 m, got %.1f", runs[0].DistanceMeters)
	}
}

func TestClaimSession_TerritoryQueuedAndCached(t *testing.T) {
	m, territories, backend := newTestManager(t, 0)

	if _, err := m.StartSession(core.SessionClaim, "player-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A 40 m square walked at 7.2 km/h, closing on the final fix.
	at := time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC)
	ingest := func(latM, lonM float64) {
		if err := m.IngestFix("player-1", fixAt(latM, lonM, at)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		at = at.Add(5 * time.Second)
	}
	for i := 0; i < 4; i++ {
		ingest(0, float64(i)*10)
	}
	for i := 0; i < 4; i++ {
		ingest(float64(i)*10, 40)
	}
	for i := 0; i < 4; i++ {
		ingest(40, 40-float64(i)*10)
	}
	for i := 0; i < 4; i++ {
		ingest(40-float64(i)*10, 0)
	}
	ingest(0, 0)

	// The event consumer finalizes the claim asynchronously.
	deadline := time.After(2 * time.Second)
	for {
		if queued, _ := m.QueueLengths(); queued == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for claim to be queued")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	if err := m.FlushQueues("claim"); err != nil {
		t.Fatalf("FlushQueues failed: %v", err)
	}

	saved, err := backend.Territories()
	if err != nil {
		t.Fatalf("Territories failed: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 persisted territory, got %d", len(saved))
	}
	if saved[0].OwnerID != "player-1" {
		t.Errorf("unexpected owner: %s", saved[0].OwnerID)
	}
	if saved[0].AreaM2 < 1440 || saved[0].AreaM2 > 1760 {
		t.Errorf("expected area within 10%% of 1600 m², got %.1f", saved[0].AreaM2)
	}

	// The flush makes the new territory visible to collision checks.
	if territories.Len() != 1 {
		t.Errorf("expected 1 cached territory, got %d", territories.Len())
	}
}

func TestCollisionPolling_TerminatesSession(t *testing.T) {
	m, territories, _ := newTestManager(t, 10*time.Millisecond)

	territories.Add(core.Territory{
		ID:      1,
		OwnerID: "player-2",
		Ring: []core.Point{
			fixAt(-20, 20, time.Time{}).Point,
			fixAt(20, 20, time.Time{}).Point,
			fixAt(20, 60, time.Time{}).Point,
			fixAt(-20, 60, time.Time{}).Point,
		},
	})

	s, err := m.StartSession(core.SessionClaim, "player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	at := time.Date(2026, 2, 12, 9, 0, 0, 0, time.UTC)
	if err := m.IngestFix("player-1", fixAt(0, 0, at)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.IngestFix("player-1", fixAt(0, 40, at.Add(20*time.Second))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for s.State() != session.StateTerminated {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for collision termination")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	if got := s.Summary().StopReason; got != core.StopCollision {
		t.Errorf("expected collision stop reason, got %s", got)
	}
}

func TestHandleSessionLifecycle_ViaDispatcher(t *testing.T) {
	m, _, _ := newTestManager(t, 0)
	d := newTestDispatcher(t, m)

	_, err := d.Dispatch(dispatcher.Event{
		Command: ":SESSION:START:",
		Args:    []string{"explore", "player-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ActiveSessions() != 1 {
		t.Fatalf("expected 1 active session, got %d", m.ActiveSessions())
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command: ":SESSION:STOP:",
		Args:    []string{"player-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "completed" {
		t.Errorf("expected completed, got %v", result)
	}
	if m.ActiveSessions() != 0 {
		t.Errorf("expected 0 active sessions, got %d", m.ActiveSessions())
	}
}

func TestHandleFix_Buffered(t *testing.T) {
	m, _, _ := newTestManager(t, 0)
	d := newTestDispatcher(t, m)

	s, err := m.StartSession(core.SessionExplore, "player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command: ":FIX:",
		Args:    []string{"player-1", "0", "0", "10", "2026-02-12T09:00:00Z"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "queued" {
		t.Errorf("expected queued result, got %v", result)
	}

	// Wait for the buffered handler to process the fix.
	deadline := time.After(2 * time.Second)
	for s.Summary().SampleCount != 1 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for fix to be processed")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestHandleTerritoryLoad_ReplacesCache(t *testing.T) {
	m, territories, _ := newTestManager(t, 0)
	d := newTestDispatcher(t, m)

	payload := `[
		{"id": 1, "ownerId": "player-2", "ring": [[0, 0], [0, 0.0004], [0.0004, 0.0004]]},
		{"id": 2, "ownerId": "player-3", "ring": [[1, 1], [1, 1.0004], [1.0004, 1.0004]]}
	]`

	result, err := d.Dispatch(dispatcher.Event{
		Command: ":TERRITORY:LOAD:",
		Args:    []string{payload},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 2 {
		t.Errorf("expected 2 loaded, got %v", result)
	}
	if territories.Len() != 2 {
		t.Errorf("expected 2 cached territories, got %d", territories.Len())
	}
}

func TestHandleFlush_RecordsWriteDuration(t *testing.T) {
	m, _, _ := newTestManager(t, 0)
	d := newTestDispatcher(t, m)

	if _, err := d.Dispatch(dispatcher.Event{Command: ":FLUSH:"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.GetLastDBWriteDuration() < 0 {
		t.Error("expected non-negative write duration")
	}
}
