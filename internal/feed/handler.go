// Package feed's HTTP surface.
//
// All mutating routes expect an x-user-id header forwarded by the Gateway;
// browsing works anonymously.
//
// Routes:
//
//	GET    /jobs        → browse the feed (filters, sort, cursor paging)
//	POST   /jobs        → create a posting (x-user-id required)
//	DELETE /jobs/{id}   → delete own posting (x-user-id required)
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"gigboard/feed-service/internal/geo"
	"gigboard/feed-service/internal/model"
)

// Store is the document-store contract the handlers depend on.
type Store interface {
	Pager
	// Create inserts a posting owned by userID and returns the stored job.
	Create(ctx context.Context, userID string, doc model.Document) (model.Job, error)
	// Delete removes the posting iff it exists and belongs to userID;
	// otherwise ErrNotFound.
	Delete(ctx context.Context, id, userID string) error
}

// Handler holds shared dependencies.
type Handler struct {
	store    Store
	geocoder ZipResolver
	rdb      *redis.Client // nil disables event publishing
	pageSize int
}

// NewHandler returns a configured Handler.
func NewHandler(store Store, geocoder ZipResolver, rdb *redis.Client, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Handler{store: store, geocoder: geocoder, rdb: rdb, pageSize: pageSize}
}

// RegisterRoutes mounts all feed-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJobByID)
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.browse(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	h.delete(w, r, parts[1])
}

// ─── Browse ──────────────────────────────────────────────────────────────────

// jobItem is the JSON shape of one feed entry.
type jobItem struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Address       string     `json:"address,omitempty"`
	Zip           string     `json:"zip,omitempty"`
	Tip           string     `json:"tip"` // display label; empty when no tip is set
	StandingOffer bool       `json:"standingOffer"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	DistanceMiles *float64   `json:"distanceMiles,omitempty"`
	Mine          bool       `json:"mine"`
}

type browseResponse struct {
	Items      []jobItem `json:"items"`
	NextCursor *string   `json:"nextCursor"`
	HasMore    bool      `json:"hasMore"`
	Stats      FeedStats `json:"stats"`
	Origin     *Origin   `json:"origin,omitempty"`
}

func (h *Handler) browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := ParseSortMode(q.Get("sort"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filters := Filters{
		Zip:   q.Get("zip"),
		Query: q.Get("q"),
	}
	if raw := q.Get("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(radius) || radius < 0 {
			jsonError(w, fmt.Sprintf("invalid radius %q", raw), http.StatusBadRequest)
			return
		}
		filters.RadiusEnabled = true
		filters.RadiusMiles = radius
	}

	origin, err := h.resolveOrigin(r.Context(), q.Get("lat"), q.Get("lng"), q.Get("originZip"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var cursor *Cursor
	if raw := q.Get("cursor"); raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			jsonError(w, fmt.Sprintf("invalid cursor %q", raw), http.StatusBadRequest)
			return
		}
		cursor = &Cursor{CreatedAt: at}
	}

	page, err := h.store.Page(r.Context(), cursor, h.pageSize)
	if err != nil {
		slog.Error("browse page query failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	hasMore := len(page) == h.pageSize
	var nextCursor *string
	if hasMore {
		s := page[len(page)-1].CreatedAt.Format(time.RFC3339Nano)
		nextCursor = &s
	}

	var originCoord *geo.LatLng
	if origin != nil {
		originCoord = &origin.Coord
	}
	visible := ComputeFeed(time.Now(), page, originCoord, filters, mode)

	userID := r.Header.Get("x-user-id")
	items := make([]jobItem, 0, len(visible))
	for i := range visible {
		items = append(items, toJobItem(&visible[i], originCoord, userID))
	}

	jsonOK(w, browseResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
		Stats:      Stats(visible),
		Origin:     origin,
	})
}

// resolveOrigin derives the browse origin from explicit coordinates (the
// client's device fix) or from a zip lookup. A zip that cannot be resolved
// yields a nil origin, not an error — with the radius filter on, that
// fail-closes to an empty feed.
func (h *Handler) resolveOrigin(ctx context.Context, latRaw, lngRaw, originZip string) (*Origin, error) {
	if latRaw != "" || lngRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		if errLat != nil || errLng != nil || !geo.Finite(lat) || !geo.Finite(lng) {
			return nil, &ValidationError{Msg: "lat and lng must both be finite numbers"}
		}
		return &Origin{Coord: geo.LatLng{Lat: lat, Lng: lng}, Source: OriginDevice}, nil
	}

	if strings.TrimSpace(originZip) == "" {
		return nil, nil
	}
	coord, err := h.geocoder.Resolve(ctx, originZip)
	if err != nil {
		return nil, fmt.Errorf("origin zip lookup: %w", err)
	}
	if coord == nil {
		return nil, nil
	}
	return &Origin{Coord: *coord, Source: OriginZip}, nil
}

func toJobItem(j *model.Job, origin *geo.LatLng, userID string) jobItem {
	item := jobItem{
		ID:            j.ID,
		UserID:        j.UserID,
		Title:         j.Doc.Title,
		Description:   j.Doc.Description,
		Address:       j.Doc.Address,
		Zip:           j.Doc.Zip,
		Tip:           j.Doc.TipLabel(),
		StandingOffer: j.Doc.StandingOffer,
		EndDate:       j.Doc.EndDate,
		CreatedAt:     j.CreatedAt,
		Mine:          userID != "" && j.UserID == userID,
	}
	if d, ok := distanceTo(origin, j); ok {
		item.DistanceMiles = &d
	}
	return item
}

// ─── Create ──────────────────────────────────────────────────────────────────

type createRequest struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	Zip           string      `json:"zip"`
	Tip           *float64    `json:"tip"`
	StandingOffer bool        `json:"standingOffer"`
	EndDate       *time.Time  `json:"endDate"`
	Location      *geo.LatLng `json:"location"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	if body.Tip != nil && (!geo.Finite(*body.Tip) || *body.Tip < 0) {
		jsonError(w, "tip must be a non-negative number", http.StatusBadRequest)
		return
	}

	doc := model.Document{
		Title:         strings.TrimSpace(body.Title),
		Description:   body.Description,
		Address:       body.Address,
		Zip:           strings.TrimSpace(body.Zip),
		Tip:           body.Tip,
		StandingOffer: body.StandingOffer,
		EndDate:       body.EndDate,
	}
	// New records always write the nested {lat,lng} shape.
	if body.Location != nil && geo.Finite(body.Location.Lat) && geo.Finite(body.Location.Lng) {
		lat, lng := body.Location.Lat, body.Location.Lng
		doc.Location = &model.Location{Lat: &lat, Lng: &lng}
	}

	job, err := h.store.Create(r.Context(), userID, doc)
	if err != nil {
		slog.Error("create job failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	h.publish(r.Context(), "EVENT_JOB_CREATED", map[string]string{
		"type":   "EVENT_JOB_CREATED",
		"jobId":  job.ID,
		"userId": userID,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toJobItem(&job, nil, userID))
}

// ─── Delete ──────────────────────────────────────────────────────────────────

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, jobID string) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	if err := h.store.Delete(r.Context(), jobID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			jsonError(w, "job not found", http.StatusNotFound)
			return
		}
		slog.Error("delete job failed", "jobId", jobID, "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	h.publish(r.Context(), "EVENT_JOB_DELETED", map[string]string{
		"type":   "EVENT_JOB_DELETED",
		"jobId":  jobID,
		"userId": userID,
	})

	jsonOK(w, map[string]string{"deleted": jobID})
}

// publish sends a feed event to Redis. Failures are logged and swallowed —
// events are best-effort.
func (h *Handler) publish(ctx context.Context, channel string, payload map[string]string) {
	if h.rdb == nil {
		return
	}
	event, _ := json.Marshal(payload)
	if err := h.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
