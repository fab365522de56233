package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	_ "github.com/producto-inventario/inventory-api/docs" // Swagger docs
	"github.com/producto-inventario/inventory-api/internal/auth"
	"github.com/producto-inventario/inventory-api/internal/config"
	"github.com/producto-inventario/inventory-api/internal/logging"
	"github.com/producto-inventario/inventory-api/internal/metrics"
	"github.com/producto-inventario/inventory-api/internal/middleware"
	"github.com/producto-inventario/inventory-api/internal/models"
	"github.com/producto-inventario/inventory-api/internal/routes"
	"github.com/producto-inventario/inventory-api/internal/store"
	apperrors "github.com/producto-inventario/inventory-api/pkg/errors"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// @title Inventory API
// @version 1.0
// @description Product inventory backend: authentication plus product maintenance through a stored procedure boundary.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg)

	// Initialize metrics
	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	// Initialize tracing
	tracingShutdown, err := middleware.InitTracing(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to setup tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown tracing")
		}
	}()

	// Set global text map propagator for distributed tracing
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Prices serialize as JSON numbers, matching the frontend contract
	decimal.MarshalJSONWithoutQuotes = true

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Inventory API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: errorHandler(logger),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		MaxAge:       86400,
	}))
	app.Use(otelfiber.Middleware())

	// pprof for memory profiling (accessible at /debug/pprof/)
	app.Use(pprof.New())

	// Initialize middleware manager and database pool
	ctx := context.Background()
	pool, err := store.NewPool(ctx, &cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database pool")
	}
	defer pool.Close()

	st := store.New(pool, cfg.Database.QueryTimeout)
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry)
	middlewareManager := middleware.NewManager(cfg, tokens, logger)

	// Setup routes
	routes.Setup(app, cfg, logger, middlewareManager, st, tokens)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.Shutdown(); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logger.WithField("port", cfg.Server.Port).Info("Starting Inventory API server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// errorHandler normalizes every error escaping a handler into the response
// envelope. AppErrors carry their own status and caller-safe message;
// anything unrecognized is logged in full and reported only as a generic
// failure.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Ocurrió un error inesperado."

		switch e := err.(type) {
		case *apperrors.AppError:
			code = e.HTTPStatus()
			message = e.Message
		case *fiber.Error:
			code = e.Code
			if code < fiber.StatusInternalServerError {
				message = e.Message
			}
		}

		logEntry := logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": code,
		})
		if code >= fiber.StatusInternalServerError {
			logEntry.Error("Request error")
		} else {
			logEntry.Warn("Request rejected")
		}

		return c.Status(code).JSON(models.Fail(code, message))
	}
}
