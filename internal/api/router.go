// Package api wires together all HTTP routes of the inventory admin app.
//
// Route grouping philosophy:
//   - The account routes (register, login, password reset) are public; they
//     are the only way in. Their POST endpoints carry credentials and are
//     rate limited per client.
//   - Everything else sits behind the session check and redirects anonymous
//     visitors to the login form.
package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/inventory-admin/inventory-admin/internal/api/authn"
	"github.com/inventory-admin/inventory-admin/internal/api/dashboard"
	"github.com/inventory-admin/inventory-admin/internal/api/plants"
	"github.com/inventory-admin/inventory-admin/internal/api/profiles"
	"github.com/inventory-admin/inventory-admin/internal/api/vehicles"
	"github.com/inventory-admin/inventory-admin/internal/auth"
	"github.com/inventory-admin/inventory-admin/internal/config"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/middleware"
	"github.com/inventory-admin/inventory-admin/internal/session"
	"github.com/inventory-admin/inventory-admin/internal/storage"
	"github.com/inventory-admin/inventory-admin/internal/uploads"
	"github.com/inventory-admin/inventory-admin/internal/web"

	// Import storage backends to register them
	_ "github.com/inventory-admin/inventory-admin/internal/storage/local"
	_ "github.com/inventory-admin/inventory-admin/internal/storage/s3"
)

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, error) {
	router := gin.New()

	storageBackend, err := storage.NewStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing storage backend: %w", err)
	}
	slog.Info("initialized storage backend", "backend", cfg.Storage.DefaultBackend)

	render, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.Redis.Addr,
		Password: cfg.Session.Redis.Password,
		DB:       cfg.Session.Redis.DB,
	})
	sessions := session.NewManager(rdb, cfg.Session.TTL, cfg.Session.CookieSecure)

	// Repositories
	profileRepo := repositories.NewProfileRepository(db)
	carRepo := repositories.NewCarRepository(db)
	motorRepo := repositories.NewMotorRepository(db)
	leafRepo := repositories.NewLeafRepository(db)
	seedRepo := repositories.NewSeedRepository(db)
	treeRepo := repositories.NewTreeRepository(db)
	statsRepo := repositories.NewStatsRepository(sqlx.NewDb(db, "postgres"))

	uploadSvc := uploads.NewService(storageBackend)
	resets := auth.NewResetManager(profileRepo, cfg.Auth.ResetTokenTTL)

	// Handlers
	authnHandler := authn.NewHandler(profileRepo, resets, sessions, render, cfg.Server.BaseURL)
	profileHandler := profiles.NewHandler(profileRepo, uploadSvc, render)
	carHandler := vehicles.NewCarHandler(carRepo, uploadSvc, render)
	motorHandler := vehicles.NewMotorHandler(motorRepo, uploadSvc, render)
	leafHandler := plants.NewLeafHandler(leafRepo, render)
	seedHandler := plants.NewSeedHandler(seedRepo, render)
	treeHandler := plants.NewTreeHandler(treeRepo, leafRepo, seedRepo, render)
	dashboardHandler := dashboard.NewHandler(statsRepo, render)

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.PageSecurityHeadersConfig()))
	router.Use(sessions.Middleware())

	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db, storageBackend))
	router.GET("/version", versionHandler())

	// The local backend stores files under BasePath and hands out URLs below
	// /uploads; the app serves them itself. Remote backends sign their own
	// URLs.
	if cfg.Storage.DefaultBackend == "local" {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	authPost := func() gin.HandlerFunc {
		if !cfg.Security.RateLimiting.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimitMiddleware(rdb, middleware.AuthRateLimitConfig(
			cfg.Security.RateLimiting.RequestsPerMinute,
			cfg.Security.RateLimiting.Burst,
		))
	}()

	// Public account routes
	router.GET("/register", authnHandler.ShowRegister)
	router.POST("/register", authPost, authnHandler.Register)
	router.GET("/login", authnHandler.ShowLogin)
	router.POST("/login", authPost, authnHandler.Login)
	router.GET("/forgot_password", authnHandler.ShowForgotPassword)
	router.POST("/forgot_password", authPost, authnHandler.ForgotPassword)
	router.GET("/reset_password/:token", authnHandler.ShowResetPassword)
	router.POST("/reset_password", authPost, authnHandler.ResetPassword)

	// Everything below requires a live session.
	private := router.Group("/", middleware.LoginRequired(profileRepo))
	{
		private.GET("/", dashboardHandler.Show)
		private.GET("/logout", authnHandler.Logout)

		private.GET("/user_list", profileHandler.List)
		private.GET("/profiles/:id/view", profileHandler.View)
		private.GET("/profiles/edit", profileHandler.ShowEdit)
		private.POST("/profiles/edit", profileHandler.Edit)

		uploadPost := func() gin.HandlerFunc {
			if !cfg.Security.RateLimiting.Enabled {
				return func(c *gin.Context) { c.Next() }
			}
			return middleware.RateLimitMiddleware(rdb, middleware.UploadRateLimitConfig())
		}()

		private.GET("/cars", carHandler.List)
		private.GET("/cars/add", carHandler.ShowAdd)
		private.POST("/cars/add", uploadPost, carHandler.Add)
		private.GET("/cars/:id/edit", carHandler.ShowEdit)
		private.POST("/cars/:id/edit", uploadPost, carHandler.Edit)
		private.POST("/cars/:id/delete", carHandler.Delete)

		private.GET("/motors", motorHandler.List)
		private.GET("/motors/add", motorHandler.ShowAdd)
		private.POST("/motors/add", uploadPost, motorHandler.Add)
		private.GET("/motors/:id/edit", motorHandler.ShowEdit)
		private.POST("/motors/:id/edit", uploadPost, motorHandler.Edit)
		private.POST("/motors/:id/delete", motorHandler.Delete)

		private.GET("/leafs", leafHandler.List)
		private.GET("/leafs/add", leafHandler.ShowAdd)
		private.POST("/leafs/add", leafHandler.Add)
		private.GET("/leafs/:id/edit", leafHandler.ShowEdit)
		private.POST("/leafs/:id/edit", leafHandler.Edit)
		private.POST("/leafs/:id/delete", leafHandler.Delete)

		private.GET("/seeds", seedHandler.List)
		private.GET("/seeds/add", seedHandler.ShowAdd)
		private.POST("/seeds/add", seedHandler.Add)
		private.GET("/seeds/:id/edit", seedHandler.ShowEdit)
		private.POST("/seeds/:id/edit", seedHandler.Edit)
		private.POST("/seeds/:id/delete", seedHandler.Delete)

		private.GET("/trees", treeHandler.List)
		private.GET("/trees/add", treeHandler.ShowAdd)
		private.POST("/trees/add", treeHandler.Add)
		private.GET("/trees/:id/edit", treeHandler.ShowEdit)
		private.POST("/trees/:id/edit", treeHandler.Edit)
		private.POST("/trees/:id/delete", treeHandler.Delete)
	}

	return router, nil
}

// healthCheckHandler returns the health status of the service.
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
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

// readinessHandler returns the readiness status of the service. Unlike the
// liveness probe (/health), this also checks the storage backend so a
// readiness gate fails when uploads and downloads would error.
func readinessHandler(db *sql.DB, storageBackend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

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

		// Probe with a known-absent sentinel path. Exists() exercises
		// authentication and network connectivity without creating state.
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

// versionHandler returns the application version.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": "0.1.0",
		})
	}
}

// LoggerMiddleware provides structured request logging. Format and level are
// global concerns of the slog handler installed by telemetry.SetupLogger.
func LoggerMiddleware() gin.HandlerFunc {
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
