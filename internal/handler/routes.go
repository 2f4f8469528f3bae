package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/pthv11/-pension-fund/internal/middleware"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/config"
	"github.com/pthv11/-pension-fund/pkg/jwtutil"
)

// RegisterRoutes wires every API route onto the Echo instance. The auth
// middleware resolves the acting user; RequireAdmin gates the admin surface.
func RegisterRoutes(e *echo.Echo, st *store.Store, jwt *jwtutil.JWT, cfg *config.Config) {
	e.Validator = NewValidator()

	authHandler := NewAuthHandler(st, jwt)
	clientHandler := NewClientHandler(st)
	userHandler := NewUserHandler(st)
	statsHandler := NewStatsHandler(st)
	contactHandler := NewContactHandler(st, cfg.Admin)

	authRequired := middleware.Auth(jwt, st)

	// Public routes - no authentication required
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)
	e.POST("/api/contact", contactHandler.Submit)

	// Authentication routes
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authRequired)

	// Client record management - admin only
	clients := e.Group("/api/clients", authRequired, middleware.RequireAdmin)
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.POST("", clientHandler.Create)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	// Admin surface: user management, statistics, maintenance
	admin := e.Group("/api/admin", authRequired, middleware.RequireAdmin)
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/stats", statsHandler.Stats)
	admin.POST("/clients/clear", clientHandler.Clear)
}
