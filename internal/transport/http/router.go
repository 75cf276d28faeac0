// Package http assembles the service's HTTP surface.
package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicationhandler "loanmatch/internal/application/handler"
	lenderhandler "loanmatch/internal/lender/handler"
	"loanmatch/internal/platform/middleware"
	platformredis "loanmatch/internal/platform/redis"
	"loanmatch/internal/transport/http/shared"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router mounts. DB and Redis may be nil when
// the service runs on in-memory storage.
type Deps struct {
	Logger       *slog.Logger
	Applications *applicationhandler.Handler
	Lenders      *lenderhandler.Handler
	DB           *sql.DB
	Redis        *platformredis.Client
}

// New builds the router with the full middleware chain and all routes.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", healthHandler(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		deps.Applications.Register(r)
		deps.Lenders.Register(r)
	})

	return r
}

func healthHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		checks := map[string]string{}

		if deps.DB != nil {
			if err := deps.DB.PingContext(r.Context()); err != nil {
				checks["postgres"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["postgres"] = "ok"
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Health(r.Context()); err != nil {
				checks["redis"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["redis"] = "ok"
			}
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "degraded"
		}
		shared.WriteJSON(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}
