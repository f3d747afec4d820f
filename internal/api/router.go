package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/config"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/klm-wiki-api/internal/service"
	"github.com/klm-wiki-api/internal/storage"
	"github.com/rs/zerolog"
)

// readinessTimeout bounds each dependency ping in /readyz
const readinessTimeout = 2 * time.Second

// Database is the part of the connection pool the router reports on
type Database interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// Infra carries the dependencies the router probes directly
type Infra struct {
	DB      Database
	Cache   cache.Store
	Limiter Limiter // nil disables rate limiting
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, infra Infra, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = multipartOverhead

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(errorMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.CORSAllowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errs.NewNotFoundError("Route not found"))
	})

	// Operational endpoints stay outside the rate limit
	router.GET("/healthz", healthz)
	router.GET("/readyz", readyz(infra, log))
	router.GET("/metrics", metricsHandler(services, infra))
	router.Static(storage.URLPrefix, cfg.Uploads.Dir)

	articleHandler := NewArticleHandler(services.Article)
	categoryHandler := NewCategoryHandler(services.Category)
	commentHandler := NewCommentHandler(services.Comment, log)
	userHandler := NewUserHandler(services.User)
	directoryHandler := NewDirectoryHandler(services.Directory)
	approvalHandler := NewApprovalHandler(services.Approval, log)
	exportHandler := NewExportHandler(services.Export, log)

	apiGroup := router.Group("/api")
	if infra.Limiter != nil {
		apiGroup.Use(rateLimitMiddleware(infra.Limiter, log))
	}
	apiGroup.Use(timeoutMiddleware(cfg.Server.RequestTimeout))
	{
		articles := apiGroup.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.POST("", articleHandler.Create)
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.Update)
			articles.DELETE("/:id", articleHandler.Delete)
		}

		categories := apiGroup.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.GET("/:id", categoryHandler.Get)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		comments := apiGroup.Group("/comments")
		{
			comments.GET("", commentHandler.List)
			comments.POST("", uploadGuard(cfg.Uploads), commentHandler.Create)
			comments.GET("/:id", commentHandler.Get)
			comments.PUT("/:id", commentHandler.Update)
			comments.DELETE("/:id", commentHandler.Delete)
		}

		users := apiGroup.Group("/users")
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id", userHandler.Update)
			users.PUT("/:id/role", userHandler.UpdateRole)
			users.DELETE("/:id", userHandler.Delete)
		}

		directory := apiGroup.Group("/services")
		{
			directory.GET("", directoryHandler.List)
			directory.POST("", directoryHandler.Create)
			directory.GET("/service-categories", directoryHandler.ListCategories)
			directory.POST("/service-categories", directoryHandler.CreateCategory)
			directory.GET("/:id", directoryHandler.Get)
			directory.PUT("/:id", directoryHandler.Update)
			directory.DELETE("/:id", directoryHandler.Delete)
		}

		approvals := apiGroup.Group("/approvals")
		{
			approvals.GET("", approvalHandler.List)
			approvals.POST("", approvalHandler.Ingest)
			approvals.GET("/export", exportHandler.StreamApprovals)
			approvals.DELETE("/previous-month", approvalHandler.PurgePreviousMonth)
		}
	}

	return router
}

// healthz is the liveness probe
func healthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// readyz pings the store and the cache
func readyz(infra Infra, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		ready := true

		probe := func(name string, ping func(context.Context) error) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("Readiness check failed")
				checks[name] = "unavailable"
				ready = false
				return
			}
			checks[name] = "ok"
		}

		if infra.DB != nil {
			probe("database", infra.DB.HealthCheck)
		}
		if infra.Cache != nil {
			probe("cache", infra.Cache.Ping)
		}

		status, label := http.StatusOK, "ready"
		if !ready {
			status, label = http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(status, gin.H{
			"status":    label,
			"checks":    checks,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// metricsHandler returns row counts per resource and pool statistics
func metricsHandler(services *service.Services, infra Infra) gin.HandlerFunc {
	resources := []string{"articles", "categories", "comments", "users", "approvals", "services"}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		counts := gin.H{}
		for _, resource := range resources {
			n, err := services.Export.GetCount(ctx, resource)
			if err != nil {
				counts[resource] = nil
				continue
			}
			counts[resource] = n
		}

		response := gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if infra.DB != nil {
			stats := infra.DB.Stats()
			response["pool"] = gin.H{
				"max_open":      stats.MaxOpenConnections,
				"open":          stats.OpenConnections,
				"in_use":        stats.InUse,
				"idle":          stats.Idle,
				"wait_count":    stats.WaitCount,
				"wait_duration": stats.WaitDuration.String(),
			}
		}

		c.JSON(http.StatusOK, response)
	}
}
