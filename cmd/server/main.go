package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	applicationhandler "loanmatch/internal/application/handler"
	appmetrics "loanmatch/internal/application/metrics"
	applicationservice "loanmatch/internal/application/service"
	appstore "loanmatch/internal/application/store"
	"loanmatch/internal/event"
	"loanmatch/internal/lender/cache"
	lenderhandler "loanmatch/internal/lender/handler"
	lendermetrics "loanmatch/internal/lender/metrics"
	lenderservice "loanmatch/internal/lender/service"
	lenderstore "loanmatch/internal/lender/store"
	"loanmatch/internal/match"
	matchmetrics "loanmatch/internal/match/metrics"
	matchstore "loanmatch/internal/match/store"
	"loanmatch/internal/platform/config"
	"loanmatch/internal/platform/httpserver"
	"loanmatch/internal/platform/logger"
	"loanmatch/internal/platform/middleware"
	"loanmatch/internal/platform/postgres"
	platformredis "loanmatch/internal/platform/redis"
	transporthttp "loanmatch/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		db      *sql.DB
		lenders lenderstore.Store
		apps    appstore.Store
		matches matchstore.Store
		err     error
	)
	if cfg.PostgresDSN != "" {
		db, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("failed to migrate schema", "error", err.Error())
			os.Exit(1)
		}
		lenders = lenderstore.NewPostgres(db)
		apps = appstore.NewPostgres(db)
		matches = matchstore.NewPostgres(db)
		log.Info("storage ready", "backend", "postgres")
	} else {
		lenders = lenderstore.NewInMemory()
		apps = appstore.NewInMemory()
		matches = matchstore.NewInMemory()
		log.Info("storage ready", "backend", "memory")
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}

	publisher, err := event.NewPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		log.Error("failed to connect to kafka", "error", err.Error())
		os.Exit(1)
	}
	defer publisher.Close()

	if cfg.SeedFile != "" {
		seeded, err := lenderstore.Seed(ctx, lenders, cfg.SeedFile)
		if err != nil {
			log.Error("failed to seed lender catalog", "error", err.Error())
			os.Exit(1)
		}
		if seeded > 0 {
			log.Info("lender catalog seeded", "lenders", seeded)
		}
	}

	lenderSvc := lenderservice.New(lenders,
		lenderservice.WithCatalogCache(cache.New(redisClient, cfg.CatalogTTL, log)),
		lenderservice.WithMetrics(lendermetrics.New()),
	)
	engine := match.NewEngine(matchmetrics.New())
	appSvc := applicationservice.New(apps, matches, lenderSvc, engine, log,
		applicationservice.WithPublisher(publisher),
		applicationservice.WithMetrics(appmetrics.New()),
	)

	admin := middleware.RequireAdmin(cfg.JWTSigningKey, log)
	router := transporthttp.New(transporthttp.Deps{
		Logger:       log,
		Applications: applicationhandler.New(appSvc, log),
		Lenders:      lenderhandler.New(lenderSvc, log, admin),
		DB:           db,
		Redis:        redisClient,
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
