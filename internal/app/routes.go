package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/penline/core/internal/middleware"
	"github.com/penline/core/internal/modules/auth/user"
	"github.com/penline/core/internal/modules/content/category"
	"github.com/penline/core/internal/modules/content/post"
	"github.com/penline/core/internal/modules/storage/upload"
	"github.com/penline/core/internal/modules/syndication/feed"
	"github.com/penline/core/internal/pkg/markdown"
	"github.com/penline/core/internal/pkg/response"
)

const apiPrefix = "/api"

// cachedRoutes are the anonymous reads served from the response cache. Post
// detail is absent because every fetch increments the view count.
var cachedRoutes = []string{
	apiPrefix + "/posts",
	apiPrefix + "/posts/search",
	apiPrefix + "/categories",
	apiPrefix + "/categories/:id",
}

func (a *App) registerRoutes() error {
	r := a.router
	authn := middleware.NewAuthenticator(a.tokens, a.store.Users())
	authMW := authn.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/metrics", a.metrics.Handler())

	storage, err := upload.NewStorage(a.cfg)
	if err != nil {
		return err
	}
	if local, ok := storage.(*upload.LocalStorage); ok {
		r.Static("/uploads", local.Dir())
	}

	feed.NewHandler(a.store, markdown.New(), feed.Site{
		Title:       a.cfg.SiteTitle,
		Description: a.cfg.SiteTitle + " posts",
		URL:         a.cfg.SiteURL,
	}, a.logger).RegisterRoutes(r)

	api := r.Group(apiPrefix)
	api.Use(authn.OptionalAuth())
	if a.redis != nil {
		if a.cfg.RateLimit.Enable {
			api.Use(middleware.RateLimit(a.redis.Raw(), a.cfg.RateLimit.Requests, a.cfg.RateWindow(), a.logger))
		}
		api.Use(middleware.Idempotence(a.redis.Raw()))
		if ttl := a.cfg.ResponseCacheTTL(); ttl > 0 {
			api.Use(middleware.ResponseCache(a.redis.Raw(), middleware.CacheOptions{
				TTL:    ttl,
				Routes: cachedRoutes,
			}, a.logger))
		}
	}

	api.GET("/ping", func(c *gin.Context) { response.OK(c, "pong") })
	api.GET("/uptime", func(c *gin.Context) {
		response.OK(c, gin.H{
			"uptime":  time.Since(a.started).Truncate(time.Second).String(),
			"env":     a.cfg.Env,
			"driver":  a.cfg.Database.Driver,
			"storage": storage.Name(),
		})
	})
	api.GET("/health", a.health)

	user.NewHandler(user.NewService(a.store.Users(), a.tokens, a.logger)).RegisterRoutes(api, authMW)
	category.NewHandler(category.NewService(a.store, a.logger, a.metrics)).RegisterRoutes(api, authMW, middleware.RequireAdmin())
	post.NewHandler(post.NewService(a.store, a.logger, a.metrics)).RegisterRoutes(api, authMW, authn.OptionalAuth())
	upload.NewHandler(storage, upload.Options{
		AllowedFormats: a.cfg.Upload.AllowedFormats,
		MaxBytes:       a.cfg.MaxUploadBytes(),
	}, a.logger, a.metrics).RegisterRoutes(api, authMW)

	return nil
}

// health reports the reachability of the store and, when configured, Redis.
func (a *App) health(c *gin.Context) {
	ctx := c.Request.Context()
	status := gin.H{"database": "ok"}
	code := http.StatusOK

	if _, err := a.store.Users().Count(ctx); err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if a.redis != nil {
		status["redis"] = "ok"
		if err := a.redis.Ping(ctx); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if code != http.StatusOK {
		a.logger.Warn("health check failed", zap.Any("status", status))
	}
	c.JSON(code, gin.H{"success": code == http.StatusOK, "data": status})
}
