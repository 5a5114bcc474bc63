package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"docetl/internal/config"
	"docetl/internal/logging"
	"docetl/internal/organizer"
	"docetl/internal/otel"
)

const notifyTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Location, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log, "docetl-organizer")
	if err != nil {
		log.Error("tracing_init_failed", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	oc := cfg.Organizer
	notifier := organizer.NewHTTPNotifier(oc.IntakeURL, notifyTimeout)
	org := organizer.New(oc.DocumentsDir, oc.OrganizedDir, notifier, log)

	log.Info("organizer_started", "documents_dir", oc.DocumentsDir, "organized_dir", oc.OrganizedDir,
		"intake_url", oc.IntakeURL, "interval", oc.Interval().String())

	if err := org.Run(ctx, oc.Interval()); err != nil && !organizer.IsStopped(err) {
		log.Error("organizer_failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("organizer_stopped")
}
