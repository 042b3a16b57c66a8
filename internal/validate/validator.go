package validate

import (
	"fmt"

	"github.com/stridelands/engine/internal/geo"
)

// Reason classifies why a closed loop failed validation. These are outcomes,
// not errors: the session is discarded and the player may retry.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonInsufficientPoints
	ReasonInsufficientDistance
	ReasonSelfIntersecting
	ReasonInsufficientArea
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "valid"
	case ReasonInsufficientPoints:
		return "insufficient_points"
	case ReasonInsufficientDistance:
		return "insufficient_distance"
	case ReasonSelfIntersecting:
		return "self_intersecting"
	case ReasonInsufficientArea:
		return "insufficient_area"
	default:
		return "unknown"
	}
}

// Result is the validator's verdict. A valid result carries the enclosed
// area; an invalid one carries a reason code and a human-readable detail.
type Result struct {
	AreaM2 float64
	Reason Reason
	Detail string
}

// Valid reports whether the path passed every check.
func (r Result) Valid() bool {
	return r.Reason == ReasonNone
}

// Config holds the territory acceptance thresholds.
type Config struct {
	MinimumPathPoints  int
	MinimumDistanceM   float64
	MinimumAreaM2      float64
	SeamExemptSegments int
}

// Validator runs the full acceptance checklist on a just-closed loop. It is
// pure given the path and config: no I/O, no hidden state, callable
// standalone.
type Validator struct {
	cfg Config
}

// NewValidator creates a validator with the given thresholds.
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate runs the checks in fixed order, cheapest first, short-circuiting
// on the first failure: point count, total distance, self-intersection,
// enclosed area.
func (v *Validator) Validate(path geo.Path) Result {
	if len(path) < v.cfg.MinimumPathPoints {
		return Result{
			Reason: ReasonInsufficientPoints,
			Detail: fmt.Sprintf("%d points recorded, %d required", len(path), v.cfg.MinimumPathPoints),
		}
	}

	if dist := path.TotalDistance(); dist < v.cfg.MinimumDistanceM {
		return Result{
			Reason: ReasonInsufficientDistance,
			Detail: fmt.Sprintf("walked %.1f m, %.0f m required", dist, v.cfg.MinimumDistanceM),
		}
	}

	if SelfIntersects(path, v.cfg.SeamExemptSegments) {
		return Result{
			Reason: ReasonSelfIntersecting,
			Detail: "the walked loop crosses itself",
		}
	}

	area := geo.RingArea(path)
	if area < v.cfg.MinimumAreaM2 {
		return Result{
			Reason: ReasonInsufficientArea,
			Detail: fmt.Sprintf("enclosed %.1f m², %.0f m² required", area, v.cfg.MinimumAreaM2),
		}
	}

	return Result{AreaM2: area}
}
