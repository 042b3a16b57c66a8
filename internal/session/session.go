// Package session orchestrates one tracking session: it owns the path,
// serializes all mutation behind a mutex, and runs the filter, speed guard,
// closure detector and validator over every accepted sample. Collision
// polling reads a snapshot so it never blocks ingestion.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/stridelands/engine/internal/channel"
	"github.com/stridelands/engine/internal/collision"
	"github.com/stridelands/engine/internal/geo"
	"github.com/stridelands/engine/internal/track"
	"github.com/stridelands/engine/internal/validate"
	"github.com/stridelands/engine/pkg/core"
)

// Clock supplies the current time. Injected so the exploration grace
// countdown and all timestamps are testable without sleeping.
type Clock func() time.Time

// TerritoryProvider hands the session the territories it may collide with.
// The cache package's TerritoryCache satisfies this.
type TerritoryProvider interface {
	Foreign(ownerID string) []core.Territory
}

// State is the session lifecycle.
type State uint8

const (
	StateActive State = iota
	// StateCompleted means a claim session closed its loop (validation may
	// still have failed) or an exploration session was stopped normally.
	StateCompleted
	// StateTerminated means the session was force-stopped by the speed guard
	// or a collision violation.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Config assembles everything a session needs. All thresholds arrive here;
// the session never reads global configuration.
type Config struct {
	Kind    core.SessionKind
	OwnerID string

	Filter     track.FilterConfig
	Guard      track.GuardConfig
	Closure    validate.ClosureConfig
	Validation validate.Config
	Bands      collision.Bands

	// EventBuffer sizes the notification channel. Zero means 64.
	EventBuffer int
	// Clock defaults to time.Now.
	Clock Clock
}

// Summary is the session's final accounting, produced by Stop or by a
// forced termination.
type Summary struct {
	Kind           core.SessionKind
	OwnerID        string
	DistanceMeters float64
	SampleCount    int
	StartedAt      time.Time
	EndedAt        time.Time
	State          State
	StopReason     core.StopReason
	// Validation is set for claim sessions whose loop closed.
	Validation *validate.Result
}

// Run converts a finished exploration summary into the persistable record.
func (s Summary) Run() core.ExplorationRun {
	return core.ExplorationRun{
		OwnerID:        s.OwnerID,
		DistanceMeters: s.DistanceMeters,
		SampleCount:    s.SampleCount,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
}

// Session is one player's active walk.
type Session struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger

	filter      *track.Filter
	guard       *track.Guard
	closure     *validate.ClosureDetector
	validator   *validate.Validator
	detector    *collision.Detector
	territories TerritoryProvider

	mu          sync.Mutex
	path        geo.Path
	distance    float64
	sampleCount int
	startedAt   time.Time
	endedAt     time.Time
	state       State
	stopReason  core.StopReason
	validation  *validate.Result

	events *channel.Buffered[Event]
}

// New creates an active session. The clock starts it immediately.
func New(cfg Config, territories TerritoryProvider, logger *slog.Logger) *Session {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}

	s := &Session{
		cfg:         cfg,
		clock:       cfg.Clock,
		logger:      logger.With("kind", cfg.Kind.String(), "owner", cfg.OwnerID),
		filter:      track.NewFilter(cfg.Filter),
		guard:       track.NewGuard(cfg.Kind, cfg.Guard),
		closure:     validate.NewClosureDetector(cfg.Closure),
		validator:   validate.NewValidator(cfg.Validation),
		detector:    collision.NewDetector(cfg.Bands),
		territories: territories,
		startedAt:   cfg.Clock(),
		events:      channel.NewBuffered[Event](cfg.EventBuffer),
	}
	return s
}

// Events returns the notification stream. The channel closes when the
// session ends.
func (s *Session) Events() channel.Receiver[Event] {
	return s.events
}

// ContextAttrs reports the session identity for log enrichment.
func (s *Session) ContextAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("session_kind", s.cfg.Kind.String()),
		slog.String("session_owner", s.cfg.OwnerID),
	}
}

// Ingest runs one fix through the pipeline: filter, speed guard, path
// append, closure check. The returned evaluation reports what the filter
// did; a rejected fix is not an error.
func (s *Session) Ingest(fix core.Fix) track.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return track.Evaluation{Outcome: track.Throttled}
	}

	ev := s.filter.Evaluate(fix)
	switch ev.Outcome {
	case track.Accepted:
	case track.DiscardedJump:
		s.logger.Warn("Discarding suspected GPS glitch",
			"distance_m", ev.DistanceMeters, "speed_kmh", ev.SpeedKmh)
		return ev
	default:
		s.logger.Debug("Fix not admitted", "outcome", ev.Outcome.String())
		return ev
	}

	now := s.clock()

	// A claim must not start on someone else's land. The first accepted fix
	// is checked directly; after that the collision poller takes over.
	if s.cfg.Kind == core.SessionClaim && s.sampleCount == 0 {
		res := s.detector.CheckPoint(fix.Point, s.cfg.OwnerID, s.territories.Foreign(s.cfg.OwnerID))
		if res.HasCollision {
			s.terminateLocked(core.StopCollision, "claim started inside another player's territory", now)
			return ev
		}
	}

	verdict := s.guard.Evaluate(ev.SpeedKmh, now)

	switch verdict.Decision {
	case track.DecisionTerminate:
		s.terminateLocked(verdict.Reason, verdict.Message, now)
		return ev
	case track.DecisionWarn:
		s.emit(Event{
			Type:     EventSpeedWarning,
			At:       now,
			Message:  verdict.Message,
			SpeedKmh: ev.SpeedKmh,
		})
	}

	// The position itself is recorded even when distance does not accrue:
	// moving fast is not invalid, it just earns nothing.
	s.path = append(s.path, fix.Point)
	s.sampleCount++
	if verdict.AccrueDistance {
		s.distance += ev.DistanceMeters
	}

	if s.cfg.Kind == core.SessionClaim {
		s.checkClosureLocked(now)
	}

	return ev
}

// checkClosureLocked runs the closure latch and, on the closing sample,
// validates the loop and completes the session.
func (s *Session) checkClosureLocked(now time.Time) {
	alreadyClosed := s.closure.Closed()
	status := s.closure.Check(s.path)
	if !status.Closed || alreadyClosed {
		return
	}

	s.emit(Event{Type: EventLoopClosed, At: now, Message: "loop closed"})

	result := s.validator.Validate(s.path)
	s.validation = &result
	s.state = StateCompleted
	s.endedAt = now

	if result.Valid() {
		s.logger.Info("Claim validated", "area_m2", result.AreaM2)
		s.emit(Event{Type: EventClaimValidated, At: now, AreaM2: result.AreaM2})
	} else {
		s.logger.Info("Claim rejected",
			"reason", result.Reason.String(), "detail", result.Detail)
		s.emit(Event{
			Type:         EventClaimRejected,
			At:           now,
			Message:      result.Detail,
			RejectReason: result.Reason.String(),
		})
	}
	s.events.Close()
}

// PollCollision checks the current path against other owners' territories.
// The geometry runs on a snapshot so ingestion is never blocked; a
// violation terminates the session.
func (s *Session) PollCollision() collision.Result {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return collision.Result{}
	}
	snapshot := s.path.Clone()
	s.mu.Unlock()

	result := s.detector.CheckPath(snapshot, s.cfg.OwnerID, s.territories.Foreign(s.cfg.OwnerID))

	if result.HasCollision {
		s.mu.Lock()
		if s.state == StateActive {
			s.terminateLocked(core.StopCollision, "entered another player's territory", s.clock())
		}
		s.mu.Unlock()
		return result
	}

	if result.WarningLevel != collision.LevelSafe {
		// Re-check state under the lock: the channel may have been closed
		// by a concurrent closure or stop.
		s.mu.Lock()
		if s.state == StateActive {
			s.emit(Event{
				Type:          EventProximityWarning,
				At:            s.clock(),
				WarningLevel:  result.WarningLevel,
				NearestMeters: result.NearestDistanceMeters,
			})
		}
		s.mu.Unlock()
	}
	return result
}

// Stop ends the session normally and returns its summary. Safe to call on
// an already-ended session.
func (s *Session) Stop() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateActive {
		s.state = StateCompleted
		s.endedAt = s.clock()
		s.events.Close()
	}
	return s.summaryLocked()
}

// Summary returns the current accounting without changing state.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

// Path returns a copy of the recorded path.
func (s *Session) Path() geo.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path.Clone()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Validation returns the claim verdict once the loop has closed.
func (s *Session) Validation() (validate.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validation == nil {
		return validate.Result{}, false
	}
	return *s.validation, true
}

func (s *Session) terminateLocked(reason core.StopReason, message string, now time.Time) {
	s.state = StateTerminated
	s.stopReason = reason
	s.endedAt = now
	s.logger.Info("Session terminated", "reason", reason.String(), "detail", message)
	s.emit(Event{
		Type:       EventTerminated,
		At:         now,
		Message:    message,
		StopReason: reason,
	})
	s.events.Close()
}

func (s *Session) summaryLocked() Summary {
	return Summary{
		Kind:           s.cfg.Kind,
		OwnerID:        s.cfg.OwnerID,
		DistanceMeters: s.distance,
		SampleCount:    s.sampleCount,
		StartedAt:      s.startedAt,
		EndedAt:        s.endedAt,
		State:          s.state,
		StopReason:     s.stopReason,
		Validation:     s.validation,
	}
}

// emit never blocks: if the consumer has fallen behind, the event is
// dropped and logged.
func (s *Session) emit(e Event) {
	if !s.events.TrySend(e) {
		s.logger.Warn("Dropping session event, consumer too slow", "type", e.Type.String())
	}
}
