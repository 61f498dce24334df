package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/penline/core/internal/config"
	"github.com/penline/core/internal/database"
	"github.com/penline/core/internal/middleware"
	"github.com/penline/core/internal/pkg/jwt"
	"github.com/penline/core/internal/pkg/metrics"
	pkgredis "github.com/penline/core/internal/pkg/redis"
	"github.com/penline/core/internal/store"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	store   store.Store
	redis   *pkgredis.Client
	tokens  *jwt.Manager
	metrics *metrics.Metrics
	logger  *zap.Logger
	started time.Time
}

// New initializes the application: store, then Redis, then routes.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	st, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rc *pkgredis.Client
	if url := cfg.RedisURLValue(); url != "" {
		rc, err = pkgredis.Connect(ctx, url)
		if err != nil {
			_ = st.Close(ctx)
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	return build(logger, cfg, st, rc)
}

// build wires the router around an opened store. rc may be nil.
func build(logger *zap.Logger, cfg *config.AppConfig, st store.Store, rc *pkgredis.Client) (*App, error) {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Env == config.EnvProduction && cfg.JWTSecret == "" {
		return nil, errors.New("jwt_secret is required in production")
	}
	if cfg.JWTSecret == "" {
		logger.Warn("jwt_secret is empty, using built-in development secret")
	}

	m := metrics.New()
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(m.Middleware())
	router.Use(cors.New(corsConfig(cfg)))

	a := &App{
		cfg:     cfg,
		router:  router,
		store:   st,
		redis:   rc,
		tokens:  jwt.New(cfg.JWTSecret, cfg.JWTExpiry()),
		metrics: m,
		logger:  logger,
		started: time.Now(),
	}
	if err := a.registerRoutes(); err != nil {
		return nil, err
	}
	return a, nil
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Idempotence-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		c.AllowOriginFunc = originMatcher(cfg.AllowedOrigins)
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown closes the store and the Redis pool.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.store.Close(ctx))
	return errors.Join(errs...)
}
