// gigboard-feed-service
//
// Backs the jobs-browse screen of the gig board:
//   - GET  /jobs        — filtered, sorted, cursor-paginated feed
//   - POST /jobs        — create a posting
//   - DELETE /jobs/{id} — owner-checked delete
//
// Jobs live as JSONB documents in PostgreSQL; zip geocoding results are
// cached in Redis with no expiry. A cron sweep removes postings long past
// their end date. Job create/delete events are published to Redis for the
// Gateway's SSE forward.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gigboard/feed-service/internal/config"
	"gigboard/feed-service/internal/db"
	"gigboard/feed-service/internal/feed"
	"gigboard/feed-service/internal/geo"
	"gigboard/feed-service/internal/store"
	"gigboard/feed-service/internal/sweeper"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[feed-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[feed-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[feed-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[feed-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[feed-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[feed-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[feed-service] Redis connected ✓")

	// ── Wiring ───────────────────────────────────────────────────────────────
	jobs := store.New(pool)
	geocoder := geo.NewGeocoder(cfg.GeocodeBaseURL, cfg.GeocodeCountry, geo.NewRedisCache(rdb))

	sw := sweeper.New(jobs, cfg.SweepIntervalHours)
	if err := sw.Start(ctx); err != nil {
		log.Fatalf("[feed-service] Sweeper: %v", err)
	}
	defer sw.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := feed.NewHandler(jobs, geocoder, rdb, cfg.PageSize)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[feed-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[feed-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[feed-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[feed-service] Shutdown error: %v", err)
	}
	log.Println("[feed-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "feed-service",
		"version": version,
	})
}
