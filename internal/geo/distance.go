// Package geo provides coordinate types, great-circle distance, and
// postal-code geocoding with a persistent cache.
package geo

import "math"

// LatLng is a coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// earthRadiusMiles is the mean Earth radius used for all distance math.
const earthRadiusMiles = 3958.7613

// DistanceMiles returns the great-circle (haversine) distance between a and b
// in miles. It is symmetric and returns 0 for identical points.
func DistanceMiles(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// Floating-point rounding can push h just outside [0, 1] for identical
	// or antipodal points; clamp before the inverse sine.
	if h > 1 {
		h = 1
	} else if h < 0 {
		h = 0
	}

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// Finite reports whether v is a usable coordinate or distance value.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
