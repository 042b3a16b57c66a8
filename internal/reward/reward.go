// Package reward maps cumulative walking distance to reward tiers. Both the
// claiming and exploration flows use this single implementation.
package reward

import "math"

// Tier is a discrete reward level.
type Tier uint8

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierDiamond
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierDiamond:
		return "diamond"
	default:
		return "unknown"
	}
}

// Fixed distance breakpoints in meters. A tier is reached once the
// cumulative distance meets its breakpoint.
var breakpoints = [...]float64{0, 200, 500, 1000, 2000}

// TierFor returns the tier earned at the given cumulative distance.
// Negative distances earn nothing.
func TierFor(distanceMeters float64) Tier {
	if distanceMeters < 0 {
		return TierNone
	}
	tier := TierNone
	for i := len(breakpoints) - 1; i >= 1; i-- {
		if distanceMeters >= breakpoints[i] {
			tier = Tier(i)
			break
		}
	}
	return tier
}

// RemainingToNext returns how many meters are left until the next tier, and
// whether a next tier exists. At or past the top tier it returns (0, false).
func RemainingToNext(distanceMeters float64) (float64, bool) {
	if distanceMeters < 0 {
		distanceMeters = 0
	}
	for i := 1; i < len(breakpoints); i++ {
		if distanceMeters < breakpoints[i] {
			return breakpoints[i] - distanceMeters, true
		}
	}
	return 0, false
}

// NextBreakpoint returns the breakpoint of the tier after the given one, or
// +Inf past the top tier.
func NextBreakpoint(t Tier) float64 {
	next := int(t) + 1
	if next >= len(breakpoints) {
		return math.Inf(1)
	}
	return breakpoints[next]
}
