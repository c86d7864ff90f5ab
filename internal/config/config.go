// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the feed service.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	PageSize           int    // records per feed page
	GeocodeBaseURL     string // empty uses the public Nominatim endpoint
	GeocodeCountry     string // ISO country code scoping zip lookups
	SweepIntervalHours int    // how often the expired-job sweep fires
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	pageSize := 25
	if s := os.Getenv("FEED_PAGE_SIZE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("FEED_PAGE_SIZE must be a positive integer, got %q", s)
		}
		pageSize = v
	}

	sweepInterval := 24
	if s := os.Getenv("SWEEP_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SWEEP_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		sweepInterval = v
	}

	country := os.Getenv("GEOCODE_COUNTRY")
	if country == "" {
		country = "us"
	}

	port := os.Getenv("FEED_PORT")
	if port == "" {
		port = "8083"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		PageSize:           pageSize,
		GeocodeBaseURL:     os.Getenv("GEOCODE_BASE_URL"),
		GeocodeCountry:     country,
		SweepIntervalHours: sweepInterval,
	}, nil
}
