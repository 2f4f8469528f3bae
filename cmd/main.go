package main

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pthv11/-pension-fund/internal/handler"
	"github.com/pthv11/-pension-fund/internal/middleware"
	"github.com/pthv11/-pension-fund/internal/seed"
	"github.com/pthv11/-pension-fund/internal/store"
	"github.com/pthv11/-pension-fund/pkg/config"
	"github.com/pthv11/-pension-fund/pkg/database"
	"github.com/pthv11/-pension-fund/pkg/jwtutil"
	"github.com/pthv11/-pension-fund/pkg/logger"
	"github.com/pthv11/-pension-fund/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting pension portal service...", zap.String("environment", cfg.Server.Env))

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	st := store.New(db)

	// Create the bootstrap admin on first start; subsequent runs are no-ops
	if _, err := seed.EnsureAdmin(context.Background(), st, cfg.Admin, log); err != nil {
		log.Fatal("Failed to ensure bootstrap admin", zap.Error(err))
	}

	jwt := jwtutil.New(&cfg.JWT)

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	handler.RegisterRoutes(e, st, jwt, cfg)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
