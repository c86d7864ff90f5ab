package geo_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gigboard/feed-service/internal/geo"
)

// memCache is an in-memory Cache for tests.
type memCache struct {
	entries map[string]geo.LatLng
	putErr  error
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]geo.LatLng)}
}

func (c *memCache) Get(ctx context.Context, zip string) (*geo.LatLng, error) {
	if coord, ok := c.entries[zip]; ok {
		return &coord, nil
	}
	return nil, nil
}

func (c *memCache) Put(ctx context.Context, zip string, coord geo.LatLng) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[zip] = coord
	return nil
}

// geocodeServer returns an httptest server answering every request with body
// and status, counting calls through *calls.
func geocodeServer(t *testing.T, status int, body string, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

// ── Resolve ────────────────────────────────────────────────────────────────

func TestResolve_BlankZipSkipsNetwork(t *testing.T) {
	var calls int
	srv := geocodeServer(t, http.StatusOK, `[]`, &calls)
	defer srv.Close()

	g := geo.NewGeocoder(srv.URL, "us", newMemCache())
	for _, zip := range []string{"", "   ", "\t"} {
		coord, err := g.Resolve(context.Background(), zip)
		if err != nil {
			t.Fatalf("Resolve(%q) unexpected error: %v", zip, err)
		}
		if coord != nil {
			t.Errorf("Resolve(%q) = %v, want nil", zip, coord)
		}
	}
	if calls != 0 {
		t.Errorf("blank zips issued %d network call(s), want 0", calls)
	}
}

func TestResolve_SuccessParsesAndCaches(t *testing.T) {
	var calls int
	srv := geocodeServer(t, http.StatusOK, `[{"lat":"40.7506","lon":"-73.9972"}]`, &calls)
	defer srv.Close()

	cache := newMemCache()
	g := geo.NewGeocoder(srv.URL, "us", cache)

	coord, err := g.Resolve(context.Background(), " 10001 ")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if coord == nil || coord.Lat != 40.7506 || coord.Lng != -73.9972 {
		t.Fatalf("Resolve = %v, want {40.7506 -73.9972}", coord)
	}
	if calls != 1 {
		t.Errorf("network calls = %d, want 1", calls)
	}
	if _, ok := cache.entries["10001"]; !ok {
		t.Error("resolved coordinate was not cached under the trimmed zip")
	}
}

func TestResolve_CacheHitSkipsNetwork(t *testing.T) {
	var calls int
	srv := geocodeServer(t, http.StatusOK, `[{"lat":"40.7506","lon":"-73.9972"}]`, &calls)
	defer srv.Close()

	cache := newMemCache()
	g := geo.NewGeocoder(srv.URL, "us", cache)

	if _, err := g.Resolve(context.Background(), "10001"); err != nil {
		t.Fatalf("warm-up Resolve error: %v", err)
	}
	coord, err := g.Resolve(context.Background(), "10001")
	if err != nil {
		t.Fatalf("cached Resolve error: %v", err)
	}
	if coord == nil {
		t.Fatal("cached Resolve = nil, want coordinate")
	}
	if calls != 1 {
		t.Errorf("network calls after warmed cache = %d, want 1", calls)
	}
}

func TestResolve_SoftMisses(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"empty result set", http.StatusOK, `[]`},
		{"non-success status", http.StatusNotFound, `{"error":"no match"}`},
		{"non-numeric latitude", http.StatusOK, `[{"lat":"north","lon":"-73.9"}]`},
		{"non-finite longitude", http.StatusOK, `[{"lat":"40.7","lon":"Inf"}]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var calls int
			srv := geocodeServer(t, c.status, c.body, &calls)
			defer srv.Close()

			g := geo.NewGeocoder(srv.URL, "us", newMemCache())
			coord, err := g.Resolve(context.Background(), "99999")
			if err != nil {
				t.Fatalf("Resolve returned error: %v (soft misses must not error)", err)
			}
			if coord != nil {
				t.Errorf("Resolve = %v, want nil", coord)
			}
		})
	}
}

// A failing cache write must not fail the geocode call that triggered it.
func TestResolve_CacheWriteFailureIsSwallowed(t *testing.T) {
	var calls int
	srv := geocodeServer(t, http.StatusOK, `[{"lat":"40.7506","lon":"-73.9972"}]`, &calls)
	defer srv.Close()

	cache := newMemCache()
	cache.putErr = fmt.Errorf("storage full")
	g := geo.NewGeocoder(srv.URL, "us", cache)

	coord, err := g.Resolve(context.Background(), "10001")
	if err != nil {
		t.Fatalf("Resolve returned error: %v, want success despite cache failure", err)
	}
	if coord == nil {
		t.Fatal("Resolve = nil, want coordinate despite cache failure")
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}
