package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/resume-parser/internal/config"
	"github.com/kirillkom/resume-parser/internal/core/parsing/sections"
	"github.com/kirillkom/resume-parser/internal/core/ports"
	"github.com/kirillkom/resume-parser/internal/core/usecase"
	"github.com/kirillkom/resume-parser/internal/infrastructure/chunking"
	"github.com/kirillkom/resume-parser/internal/infrastructure/extractor"
	"github.com/kirillkom/resume-parser/internal/infrastructure/ner/spacy"
	"github.com/kirillkom/resume-parser/internal/infrastructure/queue/memory"
	"github.com/kirillkom/resume-parser/internal/infrastructure/queue/nats"
	"github.com/kirillkom/resume-parser/internal/infrastructure/queue/redis"
	"github.com/kirillkom/resume-parser/internal/infrastructure/repository/filestore"
	"github.com/kirillkom/resume-parser/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/resume-parser/internal/infrastructure/resilience"
	"github.com/kirillkom/resume-parser/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/resume-parser/internal/infrastructure/validation"
	"github.com/kirillkom/resume-parser/internal/observability/metrics"
)

const memoryQueueCapacity = 1024

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue   ports.JobQueue
	Jobs    ports.JobStore
	Results ports.ResultStore

	UploadUC  ports.ResumeUploader
	ProcessUC ports.JobProcessor
	JobsUC    ports.JobReader
	ResultsUC ports.ResultReader
	ExportUC  ports.ResultExporter

	WorkerMetrics *metrics.WorkerMetrics

	closers []func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	workerMetrics := metrics.NewWorkerMetrics("resume-parser-worker")
	app.WorkerMetrics = workerMetrics
	onRetry := func(ev resilience.RetryEvent) {
		workerMetrics.RecordRetry(ev.Operation)
	}

	callCfg := resilience.DefaultConfig()
	callCfg.OnRetry = onRetry
	callExecutor := resilience.NewExecutorWithLogger(callCfg, logger)

	jobCfg := resilience.JobConfig(cfg.JobMaxAttempts, cfg.JobBackoffInitial, cfg.JobBackoffMax)
	jobCfg.OnRetry = onRetry
	jobExecutor := resilience.NewExecutorWithLogger(jobCfg, logger)

	if err := app.openStores(ctx, cfg, logger); err != nil {
		app.Close()
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init upload storage: %w", err)
	}

	queue, err := app.openQueue(cfg, callExecutor, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Queue = queue

	classifier := sections.Default()
	if cfg.SectionHeadersFile != "" {
		classifier, err = sections.LoadClassifier(cfg.SectionHeadersFile)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("load section headers: %w", err)
		}
	}

	validator, err := validation.New()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init result validator: %w", err)
	}

	var recognizer ports.EntityRecognizer
	if cfg.NERURL != "" {
		recognizer = spacy.New(cfg.NERURL, spacy.Options{
			Timeout:            cfg.NERTimeout,
			Chunker:            chunking.NewSplitter(chunking.DefaultChunkSize, 0),
			ResilienceExecutor: callExecutor,
			Logger:             logger,
		})
		logger.Info("ner_enabled", "url", cfg.NERURL)
	}

	textExtractor := extractor.New(extractor.Options{
		OCRBinary:  cfg.OCRBinary,
		OCRLang:    cfg.OCRLanguage,
		Classifier: classifier,
		Logger:     logger,
	})

	parser := usecase.NewParseResumeUseCase(textExtractor, app.Results, usecase.ParseOptions{
		Classifier: classifier,
		Recognizer: recognizer,
		Validator:  validator,
		Logger:     logger,
	})

	app.UploadUC = usecase.NewUploadResumeUseCase(app.Jobs, storage, queue, logger)
	processUC := usecase.NewProcessJobUseCase(app.Jobs, storage, queue, parser, jobExecutor, workerMetrics, logger)
	processUC.SetStaleActiveAfter(cfg.JobStaleAfter)
	app.ProcessUC = processUC
	app.JobsUC = usecase.NewJobQueryUseCase(app.Jobs, app.Results, storage, logger)
	app.ResultsUC = usecase.NewResultQueryUseCase(app.Results)
	app.ExportUC = usecase.NewExportUseCase(app.Results, logger)

	logger.Info("app_ready",
		"result_store", cfg.ResultStore,
		"queue_backend", cfg.QueueBackend,
		"worker_concurrency", cfg.WorkerConcurrency,
		"job_max_attempts", cfg.JobMaxAttempts,
	)
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	switch cfg.ResultStore {
	case config.ResultStorePostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := ensureSchema(ctx, db); err != nil {
			return err
		}
		a.Jobs = postgres.NewJobRepository(db)
		a.Results = postgres.NewResumeRepository(db)
	default:
		store, err := filestore.Open(cfg.ResultStorePath, logger)
		if err != nil {
			return fmt.Errorf("open file store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.Jobs = store.Jobs()
		a.Results = store.Results()
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (a *App) openQueue(cfg config.Config, executor *resilience.Executor, logger *slog.Logger) (ports.JobQueue, error) {
	switch cfg.QueueBackend {
	case config.QueueRedis:
		queue, err := redis.Dial(cfg.RedisURL, cfg.RedisQueueKey, redis.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init redis queue: %w", err)
		}
		a.closers = append(a.closers, func() { _ = queue.Close() })
		return queue, nil
	case config.QueueMemory:
		return memory.New(memoryQueueCapacity, logger), nil
	default:
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init nats queue: %w", err)
		}
		a.closers = append(a.closers, queue.Close)
		return queue, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
