package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/resume-parser/internal/adapters/http"
	"github.com/kirillkom/resume-parser/internal/bootstrap"
	"github.com/kirillkom/resume-parser/internal/config"
	"github.com/kirillkom/resume-parser/internal/observability/logging"
	"github.com/kirillkom/resume-parser/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("resume-parser-api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.UploadUC, app.JobsUC, app.ResultsUC, app.ExportUC)
	router.SetLogger(logger)
	router.SetMetrics(metrics.NewHTTPServerMetrics("resume-parser-api"))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	workerDone := make(chan struct{})
	if cfg.EmbeddedWorker {
		go func() {
			defer close(workerDone)
			if err := app.RunWorker(ctx); err != nil {
				logger.Error("embedded_worker_stopped", "error", err)
				stop()
			}
		}()
	} else {
		close(workerDone)
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort, "embedded_worker", cfg.EmbeddedWorker)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
	<-workerDone
}
