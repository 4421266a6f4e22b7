package models

import "math"

// GeodeticPosition is a point on or above the earth surface.
// Altitude is meters above the ellipsoid and defaults to 0.
type GeodeticPosition struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt,omitempty"`
}

// GeodeticBounds is a pair of geodetic corners. Min.Lon > Max.Lon means the
// longitude range wraps through the antimeridian.
type GeodeticBounds struct {
	Min GeodeticPosition `json:"min"`
	Max GeodeticPosition `json:"max"`
}

// Contains reports whether p lies inside the bounds, inclusive of both
// corners. Altitude is ignored.
func (b GeodeticBounds) Contains(p GeodeticPosition) bool {
	if p.Lat < b.Min.Lat || p.Lat > b.Max.Lat {
		return false
	}
	if b.Min.Lon > b.Max.Lon {
		return p.Lon >= b.Min.Lon || p.Lon <= b.Max.Lon
	}
	return p.Lon >= b.Min.Lon && p.Lon <= b.Max.Lon
}

// BoundsAround derives bounds spanning latSize degrees of latitude and
// lonSize degrees of longitude centered on center. Longitudes crossing
// ±180° wrap; latitudes are clamped at the poles.
func BoundsAround(center GeodeticPosition, latSize, lonSize float64) GeodeticBounds {
	return GeodeticBounds{
		Min: GeodeticPosition{
			Lat: clampLat(center.Lat - latSize/2),
			Lon: wrapLon(center.Lon - lonSize/2),
		},
		Max: GeodeticPosition{
			Lat: clampLat(center.Lat + latSize/2),
			Lon: wrapLon(center.Lon + lonSize/2),
		},
	}
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
