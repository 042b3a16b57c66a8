package geo

import (
	"math"

	"github.com/stridelands/engine/pkg/core"
)

// CCW returns the orientation of the ordered triple (a, b, c): positive for
// counter-clockwise, negative for clockwise, zero for collinear. Longitude
// is treated as x and latitude as y (planar approximation).
func CCW(a, b, c core.Point) int {
	cross := (b.Longitude-a.Longitude)*(c.Latitude-a.Latitude) -
		(b.Latitude-a.Latitude)*(c.Longitude-a.Longitude)
	switch {
	case cross > 0:
		return 1
	case cross < 0:
		return -1
	default:
		return 0
	}
}

// SegmentsIntersect reports whether segment AB crosses segment CD using the
// standard orientation test: the segments intersect iff C and D lie on
// opposite sides of AB and A and B lie on opposite sides of CD.
func SegmentsIntersect(a, b, c, d core.Point) bool {
	return CCW(a, c, d) != CCW(b, c, d) && CCW(a, b, c) != CCW(a, b, d)
}

// PointInRing performs a ray-casting containment test: a horizontal ray is
// cast from p and edge crossings are counted; an odd count means inside.
// Rings with fewer than 3 vertices always report false.
func PointInRing(p core.Point, ring []core.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := p.Longitude, p.Latitude
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Longitude, ring[i].Latitude
		xj, yj := ring[j].Longitude, ring[j].Latitude
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// RingArea computes the geodesic area enclosed by the ring in square meters
// using the spherical-excess approximation of the shoelace formula. The ring
// is implicitly closed; winding direction does not affect the result. Rings
// with fewer than 3 vertices have zero area.
func RingArea(ring []core.Point) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p1 := ring[i]
		p2 := ring[(i+1)%n]
		lon1 := radians(p1.Longitude)
		lon2 := radians(p2.Longitude)
		lat1 := radians(p1.Latitude)
		lat2 := radians(p2.Latitude)
		sum += (lon2 - lon1) * (2 + math.Sin(lat1) + math.Sin(lat2))
	}
	return math.Abs(sum * EarthRadiusMeters * EarthRadiusMeters / 2)
}

// NearestVertexDistance returns the minimum great-circle distance in meters
// from p to any vertex of the ring. Returns +Inf for an empty ring so that
// callers can take the min across several rings without special cases.
func NearestVertexDistance(p core.Point, ring []core.Point) float64 {
	nearest := math.Inf(1)
	for _, v := range ring {
		if d := Distance(p, v); d < nearest {
			nearest = d
		}
	}
	return nearest
}
