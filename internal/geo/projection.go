package geo

import (
	"math"

	"github.com/wroge/wgs84"

	"github.com/stridelands/engine/pkg/core"
)

// The display layer shifts coordinates to the regional map datum (GCJ-02)
// before rendering, because commercial map tiles for the covered region are
// published in that datum. The shift is display-only: validation and
// collision always run on the raw WGS84 samples.

// DisplayDatumBounds is the region inside which the datum shift applies.
// Outside it the transform is the identity.
var DisplayDatumBounds = core.Bounds{
	MinLatitude:  0.8293,
	MinLongitude: 72.004,
	MaxLatitude:  55.8271,
	MaxLongitude: 137.8347,
}

// Krassovsky ellipsoid parameters used by the GCJ-02 obfuscation transform.
const (
	semiMajorAxis  = 6378245.0
	eccentricitySq = 0.00669342162296594323
	degreesOfArc   = 180.0
)

// ToDisplayDatum applies the closed-form WGS84 to GCJ-02 shift for points
// inside DisplayDatumBounds and returns points outside it unchanged. The
// transform is deterministic: identical input always yields identical output.
func ToDisplayDatum(p core.Point) core.Point {
	if !DisplayDatumBounds.Contains(p) {
		return p
	}

	dLat := shiftLatitude(p.Longitude-105.0, p.Latitude-35.0)
	dLon := shiftLongitude(p.Longitude-105.0, p.Latitude-35.0)

	radLat := radians(p.Latitude)
	magic := 1 - eccentricitySq*math.Sin(radLat)*math.Sin(radLat)
	sqrtMagic := math.Sqrt(magic)

	dLat = (dLat * degreesOfArc) / ((semiMajorAxis * (1 - eccentricitySq)) / (magic * sqrtMagic) * math.Pi)
	dLon = (dLon * degreesOfArc) / (semiMajorAxis / sqrtMagic * math.Cos(radLat) * math.Pi)

	return core.Point{
		Latitude:  p.Latitude + dLat,
		Longitude: p.Longitude + dLon,
	}
}

func shiftLatitude(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320.0*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func shiftLongitude(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}

// WebMercator projects a WGS84 point to EPSG:3857 meters for map-tile
// display and export.
func WebMercator(p core.Point) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(p.Longitude, p.Latitude, 0)
	return x, y
}
