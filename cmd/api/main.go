package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docetl/docs"
	"docetl/internal/config"
	"docetl/internal/database"
	"docetl/internal/database/migration"
	handlers "docetl/internal/http/handler"
	"docetl/internal/http/middleware"
	"docetl/internal/ingest"
	"docetl/internal/logging"
	"docetl/internal/metrics"
	"docetl/internal/ocr"
	"docetl/internal/otel"
	"docetl/internal/repository/postgres"
	"docetl/internal/service"
	"docetl/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title docetl OCR intake API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Location, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log, "docetl")
	if err != nil {
		fatal(log, "tracing_init_failed", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// The engine owns a pool of tesseract clients shared by all requests
	engine, err := ocr.NewTesseract(cfg.OCR.Languages, cfg.OCR.PoolSize)
	if err != nil {
		fatal(log, "ocr_init_failed", err)
	}
	defer engine.Close()

	artifacts, err := storage.NewFileStore(cfg.OCR.ResultsDir)
	if err != nil {
		fatal(log, "results_dir_failed", err)
	}

	deps := service.Dependencies{
		Engine:    engine,
		Artifacts: artifacts,
		Forwarder: ingest.Noop{},
		Logger:    log,
	}
	if cfg.Ingest.Endpoint != "" {
		deps.Forwarder = ingest.NewHTTPForwarder(cfg.Ingest.Endpoint, cfg.Ingest.Timeout())
	}

	// Optional S3-compatible mirror of every artifact
	if cfg.MinIO.Enabled() {
		mirror, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			fatal(log, "object_storage_init_failed", err)
		}
		deps.Mirror = mirror
	}

	// Optional processing log in PostgreSQL
	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			fatal(log, "database_connect_failed", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			fatal(log, "migration_failed", err)
		}
		deps.Repo = postgres.NewProcessedDocumentPostgres(db)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pipeline, err := metrics.NewPipeline(reg)
	if err != nil {
		fatal(log, "metrics_init_failed", err)
	}
	deps.Metrics = pipeline

	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "metrics_init_failed", err)
	}

	docSvc := service.NewDocumentService(deps)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// Register global middleware
	// Server spans first so request logs can carry the trace id
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(cfg.Location))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, docSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started", "addr", cfg.Addr(), "results_dir", artifacts.Dir(),
			"ingest_endpoint", cfg.Ingest.Endpoint, "processing_log", db != nil, "mirror", deps.Mirror != nil)
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fatal(log, "server_failed", err)
		}
	case <-ctx.Done():
		log.Info("server_stopping")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error("server_shutdown_failed", "error", err.Error())
		}
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err.Error())
	os.Exit(1)
}
