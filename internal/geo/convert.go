package geo

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/stridelands/engine/pkg/core"
)

// Geometry data handed to storage is encoded as WKB via simplefeatures so
// the same bytes can be read back by spatially-aware databases later.

// ErrRingTooShort is returned when a ring cannot form a polygon.
var ErrRingTooShort = errors.New("ring needs at least 3 vertices")

// PathToLineString converts a path to a simplefeatures LineString
// (longitude as X, latitude as Y).
func PathToLineString(p Path) (geom.LineString, error) {
	if len(p) < 2 {
		return geom.LineString{}, errors.New("path needs at least 2 points")
	}
	flat := make([]float64, 0, len(p)*2)
	for _, pt := range p {
		flat = append(flat, pt.Longitude, pt.Latitude)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, err
	}
	return ls, nil
}

// RingToPolygon converts an implicitly-closed ring to a simplefeatures
// Polygon, appending the closing vertex if the ring is open.
func RingToPolygon(ring []core.Point) (geom.Polygon, error) {
	if len(ring) < 3 {
		return geom.Polygon{}, ErrRingTooShort
	}
	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = make([]core.Point, 0, len(ring)+1)
		closed = append(closed, ring...)
		closed = append(closed, ring[0])
	}
	flat := make([]float64, 0, len(closed)*2)
	for _, pt := range closed {
		flat = append(flat, pt.Longitude, pt.Latitude)
	}
	shell, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon([]geom.LineString{shell})
}

// RingToWKB encodes a ring as well-known binary.
func RingToWKB(ring []core.Point) ([]byte, error) {
	poly, err := RingToPolygon(ring)
	if err != nil {
		return nil, err
	}
	return poly.AsBinary(), nil
}

// RingFromWKB decodes a polygon's outer shell from well-known binary back
// into a ring (without the duplicated closing vertex).
func RingFromWKB(wkb []byte) ([]core.Point, error) {
	g, err := geom.UnmarshalWKB(wkb)
	if err != nil {
		return nil, err
	}
	poly, ok := g.AsPolygon()
	if !ok {
		return nil, errors.New("WKB does not encode a polygon")
	}
	seq := poly.ExteriorRing().Coordinates()
	n := seq.Length()
	if n < 4 {
		return nil, ErrRingTooShort
	}
	ring := make([]core.Point, 0, n-1)
	for i := 0; i < n-1; i++ { // drop the closing vertex
		xy := seq.GetXY(i)
		ring = append(ring, core.Point{Latitude: xy.Y, Longitude: xy.X})
	}
	return ring, nil
}
