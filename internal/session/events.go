package session

import (
	"time"

	"github.com/stridelands/engine/internal/collision"
	"github.com/stridelands/engine/pkg/core"
)

// EventType names the session notifications the presentation layer consumes.
type EventType uint8

const (
	// EventSpeedWarning fires when the player is over a soft ceiling or in
	// the exploration grace countdown.
	EventSpeedWarning EventType = iota
	// EventLoopClosed fires once when the claim path returns to its start.
	EventLoopClosed
	// EventClaimValidated fires after closure when the loop passed every check.
	EventClaimValidated
	// EventClaimRejected fires after closure when the loop failed validation.
	EventClaimRejected
	// EventProximityWarning fires when a collision poll grades the player
	// Caution, Warning or Danger near someone else's territory.
	EventProximityWarning
	// EventTerminated fires when the session is force-stopped.
	EventTerminated
)

func (t EventType) String() string {
	switch t {
	case EventSpeedWarning:
		return "speed_warning"
	case EventLoopClosed:
		return "loop_closed"
	case EventClaimValidated:
		return "claim_validated"
	case EventClaimRejected:
		return "claim_rejected"
	case EventProximityWarning:
		return "proximity_warning"
	case EventTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event is one session notification. Only the fields relevant to the type
// are populated.
type Event struct {
	Type    EventType
	At      time.Time
	Message string

	SpeedKmh      float64
	StopReason    core.StopReason
	WarningLevel  collision.WarningLevel
	NearestMeters float64
	AreaM2        float64
	RejectReason  string
}
