package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filestore/internal/cleanup"
	"filestore/internal/config"
	"filestore/internal/database"
	"filestore/internal/database/migration"
	handlers "filestore/internal/http/handler"
	"filestore/internal/http/middleware"
	"filestore/internal/otel"
	"filestore/internal/repository/postgres"
	"filestore/internal/service"
	"filestore/internal/storage"
	"filestore/internal/validation"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracing; degrades to a noop provider when the exporter is unavailable
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Select the storage backend once from configuration
	store, err := storage.New(cfg.FileStorage, cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize storage backend: %v", err)
	}

	// Initialize repositories and services
	fileRepo := postgres.NewFilePostgres(db)
	kycRepo := postgres.NewKycPostgres(db)
	validator := validation.New(cfg.FileStorage)
	fileSvc := service.NewFileService(store, fileRepo, validator, cfg.FileStorage)
	kycSvc := service.NewKycService(kycRepo, fileRepo, validator, fileSvc)

	// Start the background reclamation of expired temporary files
	reclaimer := cleanup.New(fileRepo, store, time.Duration(cfg.FileStorage.SweepIntervalHours)*time.Hour)
	go reclaimer.Run(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Identity middleware extracts the gateway-forwarded caller identity
	app.Use(middleware.Identity())

	// Prometheus request counter plus the /metrics scrape endpoint
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, fileSvc, kycSvc)

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
