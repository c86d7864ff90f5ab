// Package model defines the job document shape shared by the store, the
// feed pipeline, and the HTTP layer.
package model

import (
	"math"
	"strconv"
	"time"

	"gigboard/feed-service/internal/geo"
)

// Job is one posting as read from the jobs table. CreatedAt comes from the
// created_at column and is the pagination sort key; Doc is the decoded JSONB
// document.
type Job struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Doc       Document  `json:"doc"`
}

// Document is the stored posting body. Records have been written by several
// producer versions, so the coordinate fields come in multiple shapes (see
// ExtractCoords) and the tip may live in the legacy pay field.
type Document struct {
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Address       string     `json:"address,omitempty"`
	Zip           string     `json:"zip,omitempty"`
	Tip           *float64   `json:"tip,omitempty"`
	Pay           *float64   `json:"pay,omitempty"` // legacy field, superseded by tip
	StandingOffer bool       `json:"standingOffer,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`

	// Coordinate shapes, newest producer first. Current producers write the
	// nested {lat,lng} form; the rest exist in older records.
	Location  *Location `json:"location,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
}

// Location is the nested coordinate object. A given record populates either
// the latitude/longitude pair or the lat/lng pair, not both.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// finite reports whether p points at a usable coordinate value.
func finite(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

// ExtractCoords normalizes the document's coordinates to a single LatLng,
// trying each known shape in fixed precedence order:
//
//  1. nested location {latitude, longitude}
//  2. nested location {lat, lng}
//  3. top-level latitude / longitude
//  4. top-level lat / lng
//
// The first shape whose two fields are finite numbers wins; nil when none
// match. The order is a compatibility contract with existing records — do
// not reorder.
func ExtractCoords(d *Document) *geo.LatLng {
	if d == nil {
		return nil
	}
	if loc := d.Location; loc != nil {
		if finite(loc.Latitude) && finite(loc.Longitude) {
			return &geo.LatLng{Lat: *loc.Latitude, Lng: *loc.Longitude}
		}
		if finite(loc.Lat) && finite(loc.Lng) {
			return &geo.LatLng{Lat: *loc.Lat, Lng: *loc.Lng}
		}
	}
	if finite(d.Latitude) && finite(d.Longitude) {
		return &geo.LatLng{Lat: *d.Latitude, Lng: *d.Longitude}
	}
	if finite(d.Lat) && finite(d.Lng) {
		return &geo.LatLng{Lat: *d.Lat, Lng: *d.Lng}
	}
	return nil
}

// TipAmount resolves the posted tip: tip wins when present (even at zero),
// the legacy pay field is the fallback, and 0 covers records with neither.
func (d *Document) TipAmount() float64 {
	if d.Tip != nil {
		return *d.Tip
	}
	if d.Pay != nil {
		return *d.Pay
	}
	return 0
}

// TipLabel is the display form of the tip. Absent or non-finite values
// render as empty, not as "0".
func (d *Document) TipLabel() string {
	if d.Tip == nil && d.Pay == nil {
		return ""
	}
	v := d.TipAmount()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IsActive reports whether the posting should appear in the feed at the
// given instant. Standing offers never expire; otherwise a posting is active
// until the calendar day after its end date (time of day is ignored).
func (d *Document) IsActive(now time.Time) bool {
	if d.StandingOffer || d.EndDate == nil {
		return true
	}
	end := d.EndDate.In(now.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !endDay.Before(today)
}
