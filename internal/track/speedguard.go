package track

import (
	"fmt"
	"time"

	"github.com/stridelands/engine/pkg/core"
)

// GuardConfig holds the speed ceilings for a session kind. WarnKmh applies
// only to claim sessions, GraceTimeout only to exploration sessions.
type GuardConfig struct {
	WarnKmh      float64
	HardKmh      float64
	GraceTimeout time.Duration
}

// Decision is what the session orchestrator should do after a speed
// evaluation. The guard itself never stops timers or sessions.
type Decision uint8

const (
	DecisionContinue Decision = iota
	DecisionWarn
	DecisionTerminate
)

// Verdict carries a decision plus the details the caller needs to apply it.
type Verdict struct {
	Decision Decision
	Reason   core.StopReason
	Message  string
	// AccrueDistance is false while an exploration session is over the
	// limit: movement during that interval does not count toward the
	// cumulative total.
	AccrueDistance bool
}

// SpeedState is the externally visible hysteresis state.
type SpeedState struct {
	IsOverLimit       bool
	ViolationDeadline time.Time // zero when no countdown is running
}

// Guard is a pure state machine over (speed, now). Claim sessions terminate
// immediately above the hard ceiling; exploration sessions get a grace
// countdown that is cancelled as soon as speed drops back under the limit.
type Guard struct {
	kind  core.SessionKind
	cfg   GuardConfig
	state SpeedState
}

// NewGuard creates a guard for the given session kind.
func NewGuard(kind core.SessionKind, cfg GuardConfig) *Guard {
	return &Guard{kind: kind, cfg: cfg}
}

// Evaluate advances the state machine. now is injected so the grace
// countdown is a deadline comparison, not a timer.
func (g *Guard) Evaluate(speedKmh float64, now time.Time) Verdict {
	if g.kind == core.SessionClaim {
		return g.evaluateClaim(speedKmh)
	}
	return g.evaluateExplore(speedKmh, now)
}

func (g *Guard) evaluateClaim(speedKmh float64) Verdict {
	switch {
	case speedKmh > g.cfg.HardKmh:
		g.state.IsOverLimit = true
		return Verdict{
			Decision: DecisionTerminate,
			Reason:   core.StopOverspeedHard,
			Message:  fmt.Sprintf("speed %.1f km/h exceeds the %.0f km/h limit", speedKmh, g.cfg.HardKmh),
		}
	case speedKmh > g.cfg.WarnKmh:
		g.state.IsOverLimit = false
		return Verdict{
			Decision:       DecisionWarn,
			Message:        fmt.Sprintf("slow down: %.1f km/h", speedKmh),
			AccrueDistance: true,
		}
	default:
		g.state.IsOverLimit = false
		return Verdict{Decision: DecisionContinue, AccrueDistance: true}
	}
}

func (g *Guard) evaluateExplore(speedKmh float64, now time.Time) Verdict {
	if speedKmh <= g.cfg.HardKmh {
		// Back under the limit: clear state and cancel the countdown.
		g.state = SpeedState{}
		return Verdict{Decision: DecisionContinue, AccrueDistance: true}
	}

	if !g.state.IsOverLimit {
		g.state.IsOverLimit = true
		g.state.ViolationDeadline = now.Add(g.cfg.GraceTimeout)
	}

	if !now.Before(g.state.ViolationDeadline) {
		return Verdict{
			Decision: DecisionTerminate,
			Reason:   core.StopOverspeedTimeout,
			Message:  fmt.Sprintf("over %.0f km/h for more than %s", g.cfg.HardKmh, g.cfg.GraceTimeout),
		}
	}

	return Verdict{
		Decision: DecisionWarn,
		Message:  fmt.Sprintf("over the speed limit, tracking pauses in %s", g.state.ViolationDeadline.Sub(now).Round(time.Second)),
	}
}

// State returns the current hysteresis state.
func (g *Guard) State() SpeedState {
	return g.state
}

// Reset clears the state for a new session.
func (g *Guard) Reset() {
	g.state = SpeedState{}
}
