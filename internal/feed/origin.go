package feed

import (
	"context"
	"strings"
	"time"

	"gigboard/feed-service/internal/geo"
)

// OriginSource tags how the viewer's reference point was obtained. The tag
// is for display only; distance math ignores it.
type OriginSource string

const (
	OriginDevice OriginSource = "device-geolocation"
	OriginZip    OriginSource = "zip-lookup"
)

// Origin is the viewer's reference point for distance sort and filtering.
type Origin struct {
	Coord  geo.LatLng   `json:"coord"`
	Source OriginSource `json:"source"`
}

const (
	// devicePositionTimeout bounds the wait for a one-shot position fix.
	devicePositionTimeout = 12 * time.Second
	// devicePositionMaxAge is how long a previous fix may be reused.
	devicePositionMaxAge = 30 * time.Second
)

// PositionFunc obtains a one-shot device position. Implementations should
// honor ctx cancellation.
type PositionFunc func(ctx context.Context) (geo.LatLng, error)

// ZipResolver resolves a zip to coordinates; nil-nil means not found.
// *geo.Geocoder satisfies it.
type ZipResolver interface {
	Resolve(ctx context.Context, zip string) (*geo.LatLng, error)
}

// OriginResolver owns the session's origin. The two acquisition strategies
// are mutually exclusive: whichever succeeds last overwrites the stored
// origin. Failures leave it untouched.
//
// Like Session, an OriginResolver belongs to a single logical task.
type OriginResolver struct {
	geocoder ZipResolver
	position PositionFunc

	origin    *Origin
	lastPos   *geo.LatLng
	lastPosAt time.Time
}

// NewOriginResolver constructs a resolver. position may be nil when device
// geolocation is unavailable.
func NewOriginResolver(geocoder ZipResolver, position PositionFunc) *OriginResolver {
	return &OriginResolver{geocoder: geocoder, position: position}
}

// Origin returns the current origin, or nil when none has been set.
func (r *OriginResolver) Origin() *Origin { return r.origin }

// FromDevice acquires the device position and makes it the origin. A fix
// obtained within the last devicePositionMaxAge is reused without a new
// request; otherwise the one-shot request runs under devicePositionTimeout.
// On failure or timeout the stored origin is left unchanged and the error is
// returned — there is no silent fallback.
func (r *OriginResolver) FromDevice(ctx context.Context) (*Origin, error) {
	if r.position == nil {
		return nil, &ValidationError{Msg: "device geolocation is not available"}
	}

	if r.lastPos != nil && time.Since(r.lastPosAt) <= devicePositionMaxAge {
		r.origin = &Origin{Coord: *r.lastPos, Source: OriginDevice}
		return r.origin, nil
	}

	ctx, cancel := context.WithTimeout(ctx, devicePositionTimeout)
	defer cancel()

	pos, err := r.position(ctx)
	if err != nil {
		return nil, err
	}
	if !geo.Finite(pos.Lat) || !geo.Finite(pos.Lng) {
		return nil, &ValidationError{Msg: "device reported an invalid position"}
	}

	r.lastPos = &pos
	r.lastPosAt = time.Now()
	r.origin = &Origin{Coord: pos, Source: OriginDevice}
	return r.origin, nil
}

// FromZip geocodes zip and makes the result the origin. A blank zip is
// rejected before any network call. A lookup miss returns ErrZipNotFound
// without mutating the origin.
func (r *OriginResolver) FromZip(ctx context.Context, zip string) (*Origin, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return nil, &ValidationError{Msg: "zip is required"}
	}

	coord, err := r.geocoder.Resolve(ctx, zip)
	if err != nil {
		return nil, err
	}
	if coord == nil {
		return nil, ErrZipNotFound
	}

	r.origin = &Origin{Coord: *coord, Source: OriginZip}
	return r.origin, nil
}
