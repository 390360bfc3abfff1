package api

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/config"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/service"
	"github.com/willcldrr/exoticweeklywebiste/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// Pinger reports whether the remote store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// poolReporter is implemented by stores backed by a connection pool
type poolReporter interface {
	Stats() sql.DBStats
}

// NewRouter creates and configures the Gin router. db may be nil when no
// remote store is configured.
func NewRouter(services *service.Services, cfg *config.Config, db Pinger, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	storyHandler := NewStoryHandler(services, cfg, log)
	feedHandler := NewFeedHandler(services, log)
	importHandler := NewImportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	auth := requireAPIKey(cfg.API.Key, log)

	// Health check
	router.GET("/health", healthCheck(services, db))
	router.GET("/metrics", metricsHandler(services, db))

	// API v1
	v1 := router.Group("/v1")
	{
		stories := v1.Group("/stories")
		{
			stories.GET("", storyHandler.List)
			stories.POST("", auth, storyHandler.Create)
			stories.POST("/refresh", auth, storyHandler.Refresh)
			stories.GET("/:id", storyHandler.Get)
			stories.PATCH("/:id", auth, storyHandler.Update)
			stories.DELETE("/:id", auth, storyHandler.Delete)
		}

		v1.POST("/admin/stories", auth, storyHandler.CreateAdmin)

		feed := v1.Group("/feed")
		{
			feed.GET("/featured", feedHandler.Featured)
			feed.GET("/latest", feedHandler.Latest)
			feed.GET("/published", feedHandler.Published)
			feed.GET("/category/:category", feedHandler.ByCategory)
			feed.GET("/slug/:slug", feedHandler.BySlug)
			feed.GET("/status", feedHandler.Status)
		}

		v1.GET("/exports/stories", auth, exportHandler.StreamExport)
		v1.POST("/imports/stories", auth, importHandler.CreateImport)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(services *service.Services, db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := services.Stories.Status()

		health := "healthy"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				health = "degraded"
			}
		}

		mode := "local"
		if services.Stories.Remote() {
			mode = "remote"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    health,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
			"mode":      mode,
			"source":    status.Source,
			"stories":   status.Count,
			"loading":   status.Loading,
		})
	}
}

// metricsHandler returns story counts from the in-memory list, plus pool
// statistics when a remote store is attached
func metricsHandler(services *service.Services, db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		byStatus := map[string]int{}
		byCategory := map[string]int{}
		featured := 0
		all := services.Stories.All()
		for _, s := range all {
			byStatus[string(s.Status)]++
			byCategory[string(s.Category)]++
			if s.Featured && s.Status == models.StatusPublished {
				featured++
			}
		}

		response := gin.H{
			"stories": gin.H{
				"total":       len(all),
				"by_status":   byStatus,
				"by_category": byCategory,
				"featured":    featured,
			},
			"source":    services.Stories.Status().Source,
			"timestamp": time.Now().Format(time.RFC3339),
		}

		if pool, ok := db.(poolReporter); ok {
			stats := pool.Stats()
			response["database"] = gin.H{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"max_open":         stats.MaxOpenConnections,
				"wait_count":       stats.WaitCount,
				"wait_duration_ms": stats.WaitDuration.Milliseconds(),
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

// requireAPIKey checks the bearer token against the configured secret.
// An empty secret rejects every request.
func requireAPIKey(secret string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			log.Warn().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString("request_id")).
				Msg("Unauthorized write rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware propagates or assigns a request id
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
