// Package track filters raw location fixes and enforces the speed-based
// anti-cheat rules. It holds no I/O: fixes come in, evaluations come out.
package track

import (
	"time"

	"github.com/stridelands/engine/internal/geo"
	"github.com/stridelands/engine/pkg/core"
)

// FilterConfig holds the sample admission thresholds.
type FilterConfig struct {
	// MaxAccuracyMeters rejects fixes whose reported accuracy is worse.
	MaxAccuracyMeters float64
	// MinInterval throttles fixes arriving faster than this.
	MinInterval time.Duration
	// MinRecordDistanceMeters discards micro-jitter below this move distance.
	MinRecordDistanceMeters float64
	// MaxSingleMoveMeters discards implausible single jumps (GPS glitches).
	MaxSingleMoveMeters float64
	// CheckAccuracy disables the accuracy gate when false; exploration
	// sessions keep it on, some host surfaces feed pre-filtered fixes.
	CheckAccuracy bool
}

// Outcome classifies what the filter did with a fix. Rejections are local
// absorptions, never errors: a rejected fix simply fails to extend the path.
type Outcome uint8

const (
	// Accepted means the fix extends the path.
	Accepted Outcome = iota
	// RejectedAccuracy means the reported accuracy was over the limit.
	RejectedAccuracy
	// Throttled means the fix arrived before MinInterval elapsed.
	Throttled
	// DiscardedJitter means the move was below the minimum record distance.
	DiscardedJitter
	// DiscardedJump means the move exceeded the single-move ceiling and is
	// treated as a suspected GPS glitch.
	DiscardedJump
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedAccuracy:
		return "rejected_accuracy"
	case Throttled:
		return "throttled"
	case DiscardedJitter:
		return "discarded_jitter"
	case DiscardedJump:
		return "discarded_jump"
	default:
		return "unknown"
	}
}

// Evaluation is the filter's verdict on one fix. Distance and speed are
// relative to the last accepted sample and are zero for the session's first
// sample.
type Evaluation struct {
	Outcome        Outcome
	First          bool
	DistanceMeters float64
	SpeedKmh       float64
	Elapsed        time.Duration
}

// Filter admits fixes into a session's path. It owns the "last accepted
// sample" cursor; the session owns the path itself.
type Filter struct {
	cfg     FilterConfig
	hasLast bool
	last    core.Point
	lastAt  time.Time
}

// NewFilter creates a filter with the given thresholds.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Evaluate runs the admission checks in order (cheapest first) and advances
// the cursor when the fix is accepted. The caller appends accepted points to
// the path and routes the returned speed through the speed guard.
func (f *Filter) Evaluate(fix core.Fix) Evaluation {
	if f.cfg.CheckAccuracy && fix.AccuracyMeters > f.cfg.MaxAccuracyMeters {
		return Evaluation{Outcome: RejectedAccuracy}
	}

	if !f.hasLast {
		f.hasLast = true
		f.last = fix.Point
		f.lastAt = fix.ObservedAt
		return Evaluation{Outcome: Accepted, First: true}
	}

	elapsed := fix.ObservedAt.Sub(f.lastAt)
	if elapsed < f.cfg.MinInterval {
		return Evaluation{Outcome: Throttled, Elapsed: elapsed}
	}

	dist := geo.Distance(f.last, fix.Point)
	speed := geo.SpeedKmh(dist, elapsed.Seconds())
	ev := Evaluation{DistanceMeters: dist, SpeedKmh: speed, Elapsed: elapsed}

	if dist < f.cfg.MinRecordDistanceMeters {
		ev.Outcome = DiscardedJitter
		return ev
	}
	if dist > f.cfg.MaxSingleMoveMeters {
		ev.Outcome = DiscardedJump
		return ev
	}

	ev.Outcome = Accepted
	f.last = fix.Point
	f.lastAt = fix.ObservedAt
	return ev
}

// Reset clears the cursor for a new session.
func (f *Filter) Reset() {
	f.hasLast = false
	f.last = core.Point{}
	f.lastAt = time.Time{}
}

// LastAccepted returns the cursor, if any.
func (f *Filter) LastAccepted() (core.Point, time.Time, bool) {
	return f.last, f.lastAt, f.hasLast
}
