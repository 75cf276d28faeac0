package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv keeps main lean; every
// value has a development default so a bare `go run ./cmd/server` works with
// in-memory stores.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string
	SeedFile      string
	CatalogTTL    time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          getenv("LOANMATCH_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("LOANMATCH_POSTGRES_DSN"),
		RedisURL:      os.Getenv("LOANMATCH_REDIS_URL"),
		KafkaTopic:    getenv("LOANMATCH_KAFKA_TOPIC", "loanmatch.application.matched"),
		JWTSigningKey: getenv("LOANMATCH_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SeedFile:      os.Getenv("LOANMATCH_SEED_FILE"),
		CatalogTTL:    30 * time.Second,
	}
	if brokers := os.Getenv("LOANMATCH_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if ttl := os.Getenv("LOANMATCH_CATALOG_CACHE_TTL_SECONDS"); ttl != "" {
		if secs, err := strconv.Atoi(ttl); err == nil && secs > 0 {
			cfg.CatalogTTL = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
