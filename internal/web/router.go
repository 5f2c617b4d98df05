package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/weatherhub/internal/config"
	"github.com/geocoder89/weatherhub/internal/observability"
	"github.com/geocoder89/weatherhub/internal/repo/memory"
	"github.com/geocoder89/weatherhub/internal/repo/postgres"
	"github.com/geocoder89/weatherhub/internal/session"
	"github.com/geocoder89/weatherhub/internal/weather"
	"github.com/geocoder89/weatherhub/internal/web/handlers"
	"github.com/geocoder89/weatherhub/internal/web/templates"
)

// Deps is everything the router wires together. Pool and Users may both
// be nil, in which case an in-memory user store backs the app (dev and
// test runs without Postgres).
type Deps struct {
	Log     *slog.Logger
	Cfg     config.Config
	Pool    *pgxpool.Pool
	Users   handlers.UserStore
	Weather weather.Fetcher

	Metrics  *observability.Prom
	Registry *prometheus.Registry
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(d.Log))

	if d.Metrics != nil {
		r.Use(d.Metrics.GinHandleMiddleware())
	}

	if d.Cfg.TracingEnabled {
		r.Use(otelgin.Middleware("weatherhub"))
	}

	r.SetHTMLTemplate(templates.New())

	// health
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// wire up the user store
	users := d.Users

	if users == nil {
		if d.Pool != nil {
			users = postgres.NewUsersRepo(d.Pool)
		} else {
			users = memory.NewUsersRepo()
		}
	}

	sessions := session.NewManager(d.Cfg.SessionSecret)
	flash := handlers.NewFlashCodec(d.Cfg.SessionSecret)

	authHandler := handlers.NewAuthHandler(users, users, sessions, flash, d.Log, d.Cfg)
	weatherHandler := handlers.NewWeatherHandler(d.Weather, sessions, flash, d.Log)

	r.GET("/register", authHandler.RegisterForm)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	r.GET("/", weatherHandler.Home)
	r.POST("/search", weatherHandler.Search)

	return r
}
