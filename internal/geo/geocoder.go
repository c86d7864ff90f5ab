package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultGeocodeBaseURL = "https://nominatim.openstreetmap.org/search"
	geocodeHTTPTimeout    = 15 * time.Second
)

// Geocoder resolves a postal code to coordinates via a Nominatim-style
// search endpoint, with a persistent cache in front of the network call.
//
// Resolution is a soft operation: "zip not found" comes back as (nil, nil),
// never as an error. Only transport failures are returned as errors.
type Geocoder struct {
	baseURL string
	country string // ISO country code scoping every lookup, e.g. "us"
	cache   Cache
	client  *http.Client
}

// NewGeocoder constructs a Geocoder. baseURL may be empty to use the public
// Nominatim endpoint; cache may be nil to disable caching.
func NewGeocoder(baseURL, country string, cache Cache) *Geocoder {
	if baseURL == "" {
		baseURL = defaultGeocodeBaseURL
	}
	return &Geocoder{
		baseURL: baseURL,
		country: country,
		cache:   cache,
		client:  &http.Client{Timeout: geocodeHTTPTimeout},
	}
}

// geocodeResult mirrors one candidate in the provider's JSON response.
// Coordinates arrive as strings and must parse to finite floats.
type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve returns the coordinates for zip, or nil when the zip cannot be
// resolved. A blank zip resolves to nil without any network call. Cache hits
// return immediately; cache-write failures are logged and swallowed so a
// storage hiccup never fails a lookup that already succeeded.
func (g *Geocoder) Resolve(ctx context.Context, zip string) (*LatLng, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return nil, nil
	}

	if g.cache != nil {
		coord, err := g.cache.Get(ctx, zip)
		if err != nil {
			slog.Warn("geocode cache read failed", "zip", zip, "err", err)
		} else if coord != nil {
			return coord, nil
		}
	}

	coord, err := g.lookup(ctx, zip)
	if err != nil {
		return nil, err
	}
	if coord == nil {
		return nil, nil
	}

	if g.cache != nil {
		if err := g.cache.Put(ctx, zip, *coord); err != nil {
			slog.Warn("geocode cache write failed", "zip", zip, "err", err)
		}
	}
	return coord, nil
}

// lookup performs the single network request for a cache miss.
func (g *Geocoder) lookup(ctx context.Context, zip string) (*LatLng, error) {
	params := url.Values{}
	params.Set("postalcode", zip)
	params.Set("countrycodes", g.country)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := g.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geocode read body: %w", err)
	}

	// Non-success is a soft miss, not an error.
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("geocode unmarshal: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil || !Finite(lat) || !Finite(lng) {
		return nil, nil
	}

	return &LatLng{Lat: lat, Lng: lng}, nil
}
