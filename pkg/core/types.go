// Package core holds the pure domain records shared between the engine,
// its storage backends, and embedding callers. No GIS or database
// dependencies live here.
package core

import "time"

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Fix is a single raw location sample as delivered by the host's location
// service. Fixes are ephemeral: they exist only long enough to be filtered.
type Fix struct {
	Point          Point     `json:"point"`
	AccuracyMeters float64   `json:"accuracyMeters"`
	ObservedAt     time.Time `json:"observedAt"`
}

// SessionKind selects the anti-cheat profile for a tracking session.
type SessionKind uint8

const (
	// SessionClaim is a territory-claiming walk: two speed ceilings,
	// hard ceiling terminates immediately.
	SessionClaim SessionKind = iota
	// SessionExplore is a cumulative-distance walk: one speed ceiling
	// with a grace countdown before termination.
	SessionExplore
)

func (k SessionKind) String() string {
	switch k {
	case SessionClaim:
		return "claim"
	case SessionExplore:
		return "explore"
	default:
		return "unknown"
	}
}

// StopReason identifies why a session was force-terminated. Reasons are
// user-visible: the presentation layer maps each to a distinct message.
type StopReason uint8

const (
	StopNone StopReason = iota
	// StopOverspeedHard is the claim-mode hard ceiling breach (no grace).
	StopOverspeedHard
	// StopOverspeedTimeout is the explore-mode grace countdown expiring
	// while still over the ceiling.
	StopOverspeedTimeout
	// StopCollision is a path or point overlapping another owner's territory.
	StopCollision
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopOverspeedHard:
		return "overspeed_hard_stop"
	case StopOverspeedTimeout:
		return "overspeed_timeout_exceeded"
	case StopCollision:
		return "collision_violation"
	default:
		return "unknown"
	}
}

// Bounds is an axis-aligned bounding box in degrees.
type Bounds struct {
	MinLatitude  float64 `json:"minLatitude"`
	MinLongitude float64 `json:"minLongitude"`
	MaxLatitude  float64 `json:"maxLatitude"`
	MaxLongitude float64 `json:"maxLongitude"`
}

// Contains reports whether p lies within the box (inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.Latitude >= b.MinLatitude && p.Latitude <= b.MaxLatitude &&
		p.Longitude >= b.MinLongitude && p.Longitude <= b.MaxLongitude
}

// Territory is a validated, persisted claim. The engine only ever reads
// territories owned by other players; it never mutates them.
type Territory struct {
	ID        uint      `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Ring      []Point   `json:"ring"` // >=3 vertices, implicitly closed
	AreaM2    float64   `json:"areaM2"`
	Bounds    Bounds    `json:"bounds"`
	ClaimedAt time.Time `json:"claimedAt"`
}

// Degenerate reports whether the territory's polygon cannot be used for
// geometric checks. Degenerate records are skipped, never treated as errors.
func (t Territory) Degenerate() bool {
	return len(t.Ring) < 3
}

// ExplorationRun is the outcome of a completed exploration session.
type ExplorationRun struct {
	ID             uint      `json:"id"`
	OwnerID        string    `json:"ownerId"`
	DistanceMeters float64   `json:"distanceMeters"`
	SampleCount    int       `json:"sampleCount"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
}
