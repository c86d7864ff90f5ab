package geo_test

import (
	"math"
	"testing"

	"gigboard/feed-service/internal/geo"
)

// ── DistanceMiles ──────────────────────────────────────────────────────────

func TestDistanceMiles_IdenticalPointsAreZero(t *testing.T) {
	points := []geo.LatLng{
		{Lat: 0, Lng: 0},
		{Lat: 40.7128, Lng: -74.0060},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 90, Lng: 0},
	}
	for _, p := range points {
		if d := geo.DistanceMiles(p, p); d != 0 {
			t.Errorf("DistanceMiles(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	cases := []struct {
		a, b geo.LatLng
	}{
		{geo.LatLng{Lat: 40.7128, Lng: -74.0060}, geo.LatLng{Lat: 34.0522, Lng: -118.2437}},
		{geo.LatLng{Lat: 51.5074, Lng: -0.1278}, geo.LatLng{Lat: -33.8688, Lng: 151.2093}},
		{geo.LatLng{Lat: 0, Lng: 0}, geo.LatLng{Lat: 0, Lng: 180}},
	}
	for _, c := range cases {
		ab := geo.DistanceMiles(c.a, c.b)
		ba := geo.DistanceMiles(c.b, c.a)
		if ab != ba {
			t.Errorf("DistanceMiles(%v, %v) = %v but reversed = %v", c.a, c.b, ab, ba)
		}
	}
}

// New York City to Los Angeles is roughly 2,446 miles.
func TestDistanceMiles_KnownDistance(t *testing.T) {
	nyc := geo.LatLng{Lat: 40.7128, Lng: -74.0060}
	la := geo.LatLng{Lat: 34.0522, Lng: -118.2437}

	d := geo.DistanceMiles(nyc, la)
	if d < 2430 || d > 2460 {
		t.Errorf("DistanceMiles(NYC, LA) = %v, want ~2446", d)
	}
}

// Antipodal points stress the asin clamp; the result must stay finite and
// close to half the Earth's circumference (~12,438 mi with this radius).
func TestDistanceMiles_AntipodalIsFinite(t *testing.T) {
	a := geo.LatLng{Lat: 0, Lng: 0}
	b := geo.LatLng{Lat: 0, Lng: 180}

	d := geo.DistanceMiles(a, b)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Fatalf("DistanceMiles(antipodal) = %v, want finite", d)
	}
	if d < 12400 || d > 12480 {
		t.Errorf("DistanceMiles(antipodal) = %v, want ~12438", d)
	}
}

// ── Finite ─────────────────────────────────────────────────────────────────

func TestFinite(t *testing.T) {
	if !geo.Finite(0) || !geo.Finite(-73.99) {
		t.Error("Finite should accept ordinary values")
	}
	if geo.Finite(math.NaN()) {
		t.Error("Finite(NaN) should be false")
	}
	if geo.Finite(math.Inf(1)) || geo.Finite(math.Inf(-1)) {
		t.Error("Finite(±Inf) should be false")
	}
}
