package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunWorker republishes jobs left waiting by a previous run, then consumes the
// queue with WorkerConcurrency slots until ctx is done. Worker metrics are
// served on WorkerMetricsPort when it is set.
func (a *App) RunWorker(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.Config.WorkerMetricsPort != "" {
		server := &http.Server{
			Addr:              net.JoinHostPort("", a.Config.WorkerMetricsPort),
			Handler:           a.metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.Logger.Info("worker_metrics_listening", "port", a.Config.WorkerMetricsPort)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		recovered, err := a.ProcessUC.RecoverPending(gctx)
		if err != nil {
			a.Logger.Warn("jobs_recover_incomplete", "recovered", recovered, "error", err)
		}
		a.Logger.Info("worker_subscribed",
			"queue_backend", a.Config.QueueBackend,
			"slots", a.Config.WorkerConcurrency,
		)
		return a.Queue.Subscribe(gctx, a.Config.WorkerConcurrency, a.ProcessUC.Handle)
	})

	err := g.Wait()
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", a.WorkerMetrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	return mux
}
