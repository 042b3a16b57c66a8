// Package geo implements the spherical geometry used by the validation and
// collision engines: great-circle distances, orientation tests, segment
// intersection, ray-cast containment and spherical-excess areas.
//
// All functions treat coordinates as WGS84 degrees and approximate the Earth
// as a sphere. At the scale of a walked loop (tens to hundreds of meters)
// the planar CCW approximation of longitude/latitude is valid.
package geo

import (
	"math"

	"github.com/stridelands/engine/pkg/core"
)

// EarthRadiusMeters is the mean Earth radius used for all spherical math.
const EarthRadiusMeters = 6371000.0

// Path is an ordered sequence of points describing a walked route. Order is
// significant: it defines the polygon boundary walking order.
type Path []core.Point

// Clone returns an independent copy of the path. Collision polling reads
// clones so it never aliases a path that is still being appended to.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// TotalDistance returns the sum of consecutive great-circle segment lengths
// in meters. Paths with fewer than two points have zero length.
func (p Path) TotalDistance() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// Bounds returns the axis-aligned bounding box of the path. The zero Bounds
// is returned for an empty path.
func (p Path) Bounds() core.Bounds {
	if len(p) == 0 {
		return core.Bounds{}
	}
	b := core.Bounds{
		MinLatitude:  p[0].Latitude,
		MaxLatitude:  p[0].Latitude,
		MinLongitude: p[0].Longitude,
		MaxLongitude: p[0].Longitude,
	}
	for _, pt := range p[1:] {
		b.MinLatitude = math.Min(b.MinLatitude, pt.Latitude)
		b.MaxLatitude = math.Max(b.MaxLatitude, pt.Latitude)
		b.MinLongitude = math.Min(b.MinLongitude, pt.Longitude)
		b.MaxLongitude = math.Max(b.MaxLongitude, pt.Longitude)
	}
	return b
}

// Distance returns the great-circle (haversine) distance between two points
// in meters.
func Distance(a, b core.Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// SpeedKmh derives a speed in km/h from a distance in meters covered over
// the given number of seconds. Returns 0 for non-positive durations.
func SpeedKmh(distanceMeters, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return distanceMeters / elapsedSeconds * 3.6
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
