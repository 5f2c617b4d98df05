package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/geocoder89/weatherhub/internal/config"
	"github.com/geocoder89/weatherhub/internal/db"
	"github.com/geocoder89/weatherhub/internal/observability"
	"github.com/geocoder89/weatherhub/internal/redisclient"
	"github.com/geocoder89/weatherhub/internal/weather"
	"github.com/geocoder89/weatherhub/internal/web"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// metrics registry shared by the HTTP middleware and weather client
	registry := prometheus.NewRegistry()
	metrics := observability.NewProm(registry)

	// optional tracing
	if cfg.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(context.Background(), "weatherhub", cfg.OTLPEndpoint)

		if err != nil {
			log.Warn("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	// user store: Postgres, with an in-memory fallback in dev only
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		if cfg.Env != "dev" {
			log.Error("database connection failed", "err", err)
			os.Exit(1)
		}

		log.Warn("database unavailable, using in-memory user store", "err", err)
		pool = nil
	}

	if pool != nil {
		defer pool.Close()
	}

	// weather fetcher, optionally wrapped in the snapshot cache
	fetcher := buildFetcher(cfg, metrics, log)

	// set up routers with the log
	router := web.NewRouter(web.Deps{
		Log:      log,
		Cfg:      cfg,
		Pool:     pool,
		Weather:  fetcher,
		Metrics:  metrics,
		Registry: registry,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// buildFetcher wires the provider client and, when a cache TTL is
// configured, the snapshot cache in front of it. TTL zero means every
// panel is a fresh upstream fetch.
func buildFetcher(cfg config.Config, metrics *observability.Prom, log *slog.Logger) weather.Fetcher {
	client := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, metrics)

	if cfg.WeatherCacheTTL <= 0 {
		return client
	}

	var store weather.Store

	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, caching snapshots in process", "err", err)
			store = weather.NewMemoryStore(cfg.WeatherCacheTTL)
		} else {
			store = weather.NewRedisStore(rc.Raw(), cfg.WeatherCacheTTL)
		}
	} else {
		store = weather.NewMemoryStore(cfg.WeatherCacheTTL)
	}

	return weather.NewCachedFetcher(client, store, metrics)
}
