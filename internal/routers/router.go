// Package routers assembles the gin engine: middleware chain and routes.
package routers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/middleware"
	"github.com/haierkeys/offline-note-sync-service/internal/routers/api_router"
	"github.com/haierkeys/offline-note-sync-service/internal/service"
	"github.com/haierkeys/offline-note-sync-service/pkg/limiter"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/notes",
		FillInterval: time.Second,
		Capacity:     100,
		Quantum:      100,
	},
	limiter.BucketRule{
		Key:          "/tags",
		FillInterval: time.Second,
		Capacity:     100,
		Quantum:      100,
	},
)

// Config carries the router-level settings.
type Config struct {
	RunMode        string
	ContextTimeout time.Duration
	AppName        string
	AppVersion     string
}

// NewRouter wires the middleware chain and the REST routes.
func NewRouter(cfg Config, svc *service.Service, logger *zap.Logger) *gin.Engine {
	if cfg.RunMode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.ContextTimeout <= 0 {
		cfg.ContextTimeout = 60 * time.Second
	}

	r := gin.New()

	r.Use(middleware.AppInfo(cfg.AppName, cfg.AppVersion))
	r.Use(middleware.Tracer())
	r.Use(middleware.RateLimiter(methodLimiters))
	r.Use(middleware.ContextTimeout(cfg.ContextTimeout))
	r.Use(middleware.Cors())
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.RecoveryWithLogger(logger))

	r.NoRoute(middleware.NoFound())

	base := api_router.NewHandler(svc, logger)
	noteHandler := api_router.NewNoteHandler(base)
	tagHandler := api_router.NewTagHandler(base)
	healthHandler := api_router.NewHealthHandler(cfg.AppName, cfg.AppVersion)

	r.GET("/health", healthHandler.Check)

	notes := r.Group("/notes")
	{
		notes.GET("", noteHandler.List)
		notes.GET("/search", noteHandler.Search)
		notes.GET("/:id", noteHandler.Get)
		notes.POST("", noteHandler.Create)
		notes.PUT("/:id", noteHandler.Update)
		notes.DELETE("/:id", noteHandler.Delete)
		notes.POST("/:id/restore", noteHandler.Restore)
		notes.POST("/:id/toggle-favorite", noteHandler.ToggleFavorite)
		notes.GET("/:id/export", noteHandler.Export)
		notes.POST("/:id/tags/:tagId", noteHandler.AttachTag)
		notes.DELETE("/:id/tags/:tagId", noteHandler.DetachTag)
	}

	tags := r.Group("/tags")
	{
		tags.GET("", tagHandler.List)
		tags.GET("/:id", tagHandler.Get)
		tags.POST("", tagHandler.Create)
		tags.PUT("/:id", tagHandler.Update)
		tags.DELETE("/:id", tagHandler.Delete)
	}

	return r
}
