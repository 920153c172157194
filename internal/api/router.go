// Package api wires together all HTTP routes for the Eastern ERP backend.
//
// Route grouping philosophy:
//   - /health, /ready, and /version are unauthenticated so load balancers and
//     deploy tooling can probe the service without credentials.
//   - /api/v1/auth/login is unauthenticated but sits behind the strict auth
//     rate limiter to slow credential stuffing.
//   - Everything else under /api/v1/ requires a valid JWT for an active
//     account; user management and destructive operations additionally
//     require the admin role.
//   - /api/v1/files/ serves stored evidence directly and is only registered
//     when the local storage backend runs with serve_directly enabled. S3
//     deployments hand out pre-signed URLs instead.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/eastern-erp/eastern-erp/internal/api/admin"
	"github.com/eastern-erp/eastern-erp/internal/api/audits"
	"github.com/eastern-erp/eastern-erp/internal/api/rugs"
	"github.com/eastern-erp/eastern-erp/internal/compliance"
	"github.com/eastern-erp/eastern-erp/internal/config"
	"github.com/eastern-erp/eastern-erp/internal/db/repositories"
	"github.com/eastern-erp/eastern-erp/internal/jobs"
	"github.com/eastern-erp/eastern-erp/internal/middleware"
	"github.com/eastern-erp/eastern-erp/internal/storage"

	// Import storage backends to register them
	_ "github.com/eastern-erp/eastern-erp/internal/storage/local"
	_ "github.com/eastern-erp/eastern-erp/internal/storage/s3"
)

// BackgroundServices holds references to background jobs and resources that
// must be stopped during graceful shutdown. The caller (cmd/server) is
// responsible for calling Shutdown() when the process receives a termination
// signal.
type BackgroundServices struct {
	staleDraftNotifier *jobs.StaleDraftNotifier
	rateLimiters       []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained
// first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.staleDraftNotifier != nil {
		bg.staleDraftNotifier.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize storage backend
	storageBackend, err := storage.NewStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}
	log.Printf("Initialized storage backend: %s", cfg.Storage.DefaultBackend)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Wrap *sql.DB with sqlx for the rug and activity repositories
	sqlxDB := sqlx.NewDb(db, "postgres")
	activityRepo := repositories.NewActivityRepository(sqlxDB)

	// Evidence store and lifecycle controller
	evidenceStore := storage.NewEvidenceStore(storageBackend, &cfg.Evidence)
	controller := compliance.NewController(auditRepo, evidenceStore, cfg.Companies, cfg.Evidence.MaxPerItem)

	// Initialize and start the stale-draft notifier
	staleDraftNotifier := jobs.NewStaleDraftNotifier(auditRepo, &cfg.Jobs.StaleDraft)
	go staleDraftNotifier.Start(context.Background())

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Readiness check endpoint (includes storage backend probe)
	router.GET("/ready", readinessHandler(db, storageBackend))

	// API version
	router.GET("/version", versionHandler())

	// Direct evidence file serving for local storage with serve_directly
	if cfg.Storage.DefaultBackend == "local" && cfg.Storage.Local.ServeDirectly {
		router.GET("/api/v1/files/*filepath", serveFileHandler(storageBackend))
	}

	// Initialize handlers
	authHandlers := admin.NewAuthHandlers(cfg, db)
	userHandlers := admin.NewUserHandlers(cfg, db)
	activityHandlers := admin.NewActivityHandlers(sqlxDB)
	evidenceDeps := audits.NewEvidenceDeps(evidenceStore, cfg.Evidence.MaxUploadBytes)
	auditHandlers := audits.NewHandlers(controller, evidenceDeps)
	rugHandlers := rugs.NewHandlers(sqlxDB)

	// Initialize rate limiters
	authRateLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	generalRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	uploadRateLimiter := middleware.NewRateLimiter(middleware.UploadRateLimitConfig())

	apiV1 := router.Group("/api/v1")
	{
		// Public authentication endpoints (no auth required, but rate limited)
		authGroup := apiV1.Group("/auth")
		authGroup.Use(middleware.RateLimitMiddleware(authRateLimiter))
		{
			authGroup.POST("/login", authHandlers.LoginHandler())
		}

		// Authenticated-only endpoints
		authenticatedGroup := apiV1.Group("")
		authenticatedGroup.Use(middleware.AuthMiddleware(userRepo))
		authenticatedGroup.Use(middleware.RateLimitMiddleware(generalRateLimiter))
		authenticatedGroup.Use(middleware.ActivityMiddleware(activityRepo))
		{
			authenticatedGroup.GET("/auth/me", authHandlers.MeHandler())

			// Audit templates (read-only seed data)
			authenticatedGroup.GET("/templates", auditHandlers.ListTemplatesHandler())
			authenticatedGroup.GET("/templates/:key", auditHandlers.GetTemplateHandler())

			// Compliance audits
			auditsGroup := authenticatedGroup.Group("/audits")
			{
				auditsGroup.GET("", auditHandlers.ListAuditsHandler())
				auditsGroup.POST("", auditHandlers.CreateAuditHandler())
				auditsGroup.GET("/:id", auditHandlers.GetAuditHandler())
				auditsGroup.PUT("/:id", auditHandlers.SaveAuditHandler())
				auditsGroup.POST("/:id/submit", auditHandlers.SubmitAuditHandler())
				auditsGroup.DELETE("/:id",
					middleware.RequireAdmin(),
					auditHandlers.DeleteAuditHandler())
				auditsGroup.POST("/:id/evidence/:code",
					middleware.RateLimitMiddleware(uploadRateLimiter), // Stricter rate limit for uploads
					auditHandlers.UploadEvidenceHandler())
			}

			// Rug catalogue
			rugsGroup := authenticatedGroup.Group("/rugs")
			{
				rugsGroup.GET("", rugHandlers.ListRugsHandler())
				rugsGroup.GET("/search", rugHandlers.SearchRugsHandler())
				rugsGroup.GET("/:id", rugHandlers.GetRugHandler())
				rugsGroup.POST("", rugHandlers.CreateRugHandler())
				rugsGroup.PUT("/:id", rugHandlers.UpdateRugHandler())
				rugsGroup.DELETE("/:id",
					middleware.RequireAdmin(),
					rugHandlers.DeleteRugHandler())
			}

			// User management and activity log (admin only)
			adminGroup := authenticatedGroup.Group("/admin")
			adminGroup.Use(middleware.RequireAdmin())
			{
				usersGroup := adminGroup.Group("/users")
				{
					usersGroup.GET("", userHandlers.ListUsersHandler())
					usersGroup.GET("/search", userHandlers.SearchUsersHandler())
					usersGroup.GET("/:id", userHandlers.GetUserHandler())
					usersGroup.POST("", userHandlers.CreateUserHandler())
					usersGroup.PUT("/:id", userHandlers.UpdateUserHandler())
					usersGroup.DELETE("/:id", userHandlers.DeleteUserHandler())
				}

				adminGroup.GET("/activity", activityHandlers.ListActivityHandler())
				adminGroup.POST("/activity/prune", activityHandlers.PruneActivityHandler())
			}
		}
	}

	bg := &BackgroundServices{
		staleDraftNotifier: staleDraftNotifier,
		rateLimiters:       []*middleware.RateLimiter{authRateLimiter, generalRateLimiter, uploadRateLimiter},
	}

	return router, bg
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic. Checks database and storage backend connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "ready: false, error: dependency not ready"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service.
// Unlike the liveness probe (/health), this also checks the storage backend so
// that a readiness gate fails when evidence uploads would error.
func readinessHandler(db *sql.DB, storageBackend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		// Check database connection
		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		// Check storage backend with a known-absent sentinel path. Exists()
		// exercises authentication and network connectivity without creating
		// any state.
		if _, err := storageBackend.Exists(c.Request.Context(), ".readiness-probe"); err != nil {
			checks["storage"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "storage backend not ready",
			})
			return
		}
		checks["storage"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the current API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// serveFileHandler streams stored evidence files when the local backend runs
// with serve_directly. The wildcard path is the storage key.
func serveFileHandler(storageBackend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("filepath")
		if len(key) > 0 && key[0] == '/' {
			key = key[1:]
		}

		meta, err := storageBackend.GetMetadata(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File not found",
			})
			return
		}

		reader, err := storageBackend.Download(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File not found",
			})
			return
		}
		defer reader.Close()

		contentType := meta.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(key))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		c.DataFromReader(http.StatusOK, meta.Size, contentType, reader, nil)
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
