package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/resume-parser/internal/bootstrap"
	"github.com/kirillkom/resume-parser/internal/config"
	"github.com/kirillkom/resume-parser/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	if cfg.QueueBackend == config.QueueMemory {
		log.Fatalf("worker cannot consume the in-process memory queue; run the api with EMBEDDED_WORKER=true instead")
	}

	logger := logging.NewJSONLogger("resume-parser-worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if err := app.RunWorker(ctx); err != nil {
		log.Fatalf("worker error: %v", err)
	}
	logger.Info("worker_stopped")
}
