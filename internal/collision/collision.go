// Package collision checks a candidate point or path against territories
// already claimed by other players: containment, edge crossings, and
// advisory proximity scoring.
package collision

import (
	"math"

	"github.com/stridelands/engine/internal/geo"
	"github.com/stridelands/engine/pkg/core"
)

// Kind names the overlap that caused a violation.
type Kind uint8

const (
	KindNone Kind = iota
	KindPointInTerritory
	KindPathCrossesTerritory
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPointInTerritory:
		return "point_in_territory"
	case KindPathCrossesTerritory:
		return "path_crosses_territory"
	default:
		return "unknown"
	}
}

// WarningLevel grades how close the player is to someone else's land.
// Violation is the only level that stops a session; the rest are advisory.
type WarningLevel uint8

const (
	LevelSafe WarningLevel = iota
	LevelCaution
	LevelWarning
	LevelDanger
	LevelViolation
)

func (l WarningLevel) String() string {
	switch l {
	case LevelSafe:
		return "safe"
	case LevelCaution:
		return "caution"
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	case LevelViolation:
		return "violation"
	default:
		return "unknown"
	}
}

// Bands holds the proximity classification thresholds in meters.
type Bands struct {
	SafeAboveMeters    float64 // > Safe
	CautionAboveMeters float64 // (Caution, Safe] => Caution
	WarningAboveMeters float64 // (Warning, Caution] => Warning, below => Danger
}

// DefaultBands are the stock 100/50/25 m proximity bands.
var DefaultBands = Bands{
	SafeAboveMeters:    100,
	CautionAboveMeters: 50,
	WarningAboveMeters: 25,
}

// Result is one collision poll's verdict.
type Result struct {
	HasCollision          bool
	Kind                  Kind
	TerritoryID           uint
	NearestDistanceMeters float64
	WarningLevel          WarningLevel
}

// Detector evaluates candidate geometry against other owners' territories.
type Detector struct {
	bands Bands
}

// NewDetector creates a detector with the given proximity bands.
func NewDetector(bands Bands) *Detector {
	return &Detector{bands: bands}
}

// CheckPoint tests whether p lies inside any territory not owned by ownerID.
// Used before a claiming session starts. Degenerate polygons are skipped.
func (d *Detector) CheckPoint(p core.Point, ownerID string, territories []core.Territory) Result {
	for _, t := range territories {
		if t.OwnerID == ownerID || t.Degenerate() {
			continue
		}
		if geo.PointInRing(p, t.Ring) {
			return Result{
				HasCollision: true,
				Kind:         KindPointInTerritory,
				TerritoryID:  t.ID,
				WarningLevel: LevelViolation,
			}
		}
	}
	return d.proximity(p, ownerID, territories)
}

// CheckPath tests the path's most recent segment against every edge of every
// other owner's territory, plus containment of the latest point. Either
// condition is a violation; otherwise the result carries proximity scoring
// for the latest point.
func (d *Detector) CheckPath(path geo.Path, ownerID string, territories []core.Territory) Result {
	if len(path) == 0 {
		return Result{NearestDistanceMeters: math.Inf(1), WarningLevel: LevelSafe}
	}
	latest := path[len(path)-1]

	for _, t := range territories {
		if t.OwnerID == ownerID || t.Degenerate() {
			continue
		}
		if len(path) >= 2 && segmentCrossesRing(path[len(path)-2], latest, t.Ring) {
			return Result{
				HasCollision: true,
				Kind:         KindPathCrossesTerritory,
				TerritoryID:  t.ID,
				WarningLevel: LevelViolation,
			}
		}
		if geo.PointInRing(latest, t.Ring) {
			return Result{
				HasCollision: true,
				Kind:         KindPointInTerritory,
				TerritoryID:  t.ID,
				WarningLevel: LevelViolation,
			}
		}
	}
	return d.proximity(latest, ownerID, territories)
}

// proximity classifies the nearest-vertex distance from p to other owners'
// territories. An empty (or all-degenerate) territory list is always Safe.
func (d *Detector) proximity(p core.Point, ownerID string, territories []core.Territory) Result {
	nearest := math.Inf(1)
	var nearestID uint
	for _, t := range territories {
		if t.OwnerID == ownerID || t.Degenerate() {
			continue
		}
		if dist := geo.NearestVertexDistance(p, t.Ring); dist < nearest {
			nearest = dist
			nearestID = t.ID
		}
	}

	level := LevelSafe
	switch {
	case math.IsInf(nearest, 1):
		// no foreign territories at all
	case nearest > d.bands.SafeAboveMeters:
		level = LevelSafe
	case nearest > d.bands.CautionAboveMeters:
		level = LevelCaution
	case nearest > d.bands.WarningAboveMeters:
		level = LevelWarning
	default:
		level = LevelDanger
	}

	return Result{
		TerritoryID:           nearestID,
		NearestDistanceMeters: nearest,
		WarningLevel:          level,
	}
}

func segmentCrossesRing(a, b core.Point, ring []core.Point) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		c := ring[i]
		e := ring[(i+1)%n]
		if geo.SegmentsIntersect(a, b, c, e) {
			return true
		}
	}
	return false
}
