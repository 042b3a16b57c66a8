// Package validate decides whether a walked path forms a legitimate claimed
// territory: loop closure, self-intersection, minimum size checks and the
// enclosed geodesic area.
package validate

import (
	"github.com/stridelands/engine/internal/geo"
)

// ClosureConfig holds the loop-completion thresholds.
type ClosureConfig struct {
	// MinimumPathPoints must be recorded before closure is considered.
	MinimumPathPoints int
	// ThresholdMeters is the maximum start-to-end distance for a closed
	// loop. A path exactly at the threshold counts as closed.
	ThresholdMeters float64
}

// ClosureStatus is the detector's report for one check.
type ClosureStatus struct {
	Closed bool
	// RemainingMeters is the start-to-end gap, for UI feedback. Zero once
	// closed or while the path is still below the minimum point count.
	RemainingMeters float64
}

// ClosureDetector checks whether the path's latest point has returned to its
// start. Closure is a one-way latch: once flagged, later checks keep
// reporting closed for the life of the session.
type ClosureDetector struct {
	cfg    ClosureConfig
	closed bool
}

// NewClosureDetector creates a detector with the given thresholds.
func NewClosureDetector(cfg ClosureConfig) *ClosureDetector {
	return &ClosureDetector{cfg: cfg}
}

// Check evaluates the current path. Calling it again after closure is a
// no-op that keeps reporting closed.
func (d *ClosureDetector) Check(path geo.Path) ClosureStatus {
	if d.closed {
		return ClosureStatus{Closed: true}
	}
	if len(path) < d.cfg.MinimumPathPoints {
		return ClosureStatus{}
	}

	gap := geo.Distance(path[0], path[len(path)-1])
	if gap <= d.cfg.ThresholdMeters {
		d.closed = true
		return ClosureStatus{Closed: true}
	}
	return ClosureStatus{RemainingMeters: gap - d.cfg.ThresholdMeters}
}

// Closed reports whether the latch has fired.
func (d *ClosureDetector) Closed() bool {
	return d.closed
}

// Reset re-arms the latch for a new session.
func (d *ClosureDetector) Reset() {
	d.closed = false
}
