// Package geo holds the pure geodesy used by the fusion and camera layers:
// geodetic to ECEF conversion, local tangent-plane rotation and great-circle
// distance. All functions are total over lat [-90,90], lon [-180,180].
package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"aircraft-fusion/pkg/models"
)

// WGS84-like ellipsoid radii in meters.
const (
	EquatorialRadius = 6378137.0
	PolarRadius      = 6356752.3

	meanRadius = (EquatorialRadius + PolarRadius) / 2
)

// ToECEF converts a geodetic position to earth-centered, earth-fixed
// Cartesian meters.
func ToECEF(p models.GeodeticPosition) r3.Vec {
	sinLat, cosLat := math.Sincos(radians(p.Lat))
	sinLon, cosLon := math.Sincos(radians(p.Lon))

	a2 := EquatorialRadius * EquatorialRadius
	b2 := PolarRadius * PolarRadius

	// Prime vertical radius of curvature at this latitude.
	n := a2 / math.Sqrt(a2*cosLat*cosLat+b2*sinLat*sinLat)

	return r3.Vec{
		X: (n + p.Alt) * cosLat * cosLon,
		Y: (n + p.Alt) * cosLat * sinLon,
		Z: (n*b2/a2 + p.Alt) * sinLat,
	}
}

// ENUToECEFRotation builds the rotation whose columns are the local
// east, north and up directions at p, expressed in ECEF axes.
func ENUToECEFRotation(p models.GeodeticPosition) *mat.Dense {
	sinLat, cosLat := math.Sincos(radians(p.Lat))
	sinLon, cosLon := math.Sincos(radians(p.Lon))

	return mat.NewDense(3, 3, []float64{
		-sinLon, -sinLat * cosLon, cosLat * cosLon,
		cosLon, -sinLat * sinLon, cosLat * sinLon,
		0, cosLat, sinLat,
	})
}

// SurfaceDistance is the haversine great-circle distance between a and b in
// meters over the mean earth radius. Altitude is ignored.
func SurfaceDistance(a, b models.GeodeticPosition) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	latA := radians(a.Lat)
	latB := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return meanRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
