package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"katze_backend/internal/adapters/storage"
	"katze_backend/internal/authz"
	"katze_backend/internal/dispatch"
	"katze_backend/internal/gate"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/http/router"
	"katze_backend/internal/intake"
	"katze_backend/internal/listings"
	listingrepo "katze_backend/internal/listings/repository"
	"katze_backend/internal/moderation"
	"katze_backend/internal/reports"
	reportrepo "katze_backend/internal/reports/repository"
	"katze_backend/internal/requests"
	requestrepo "katze_backend/internal/requests/repository"
	"katze_backend/internal/screening"
	"katze_backend/internal/settings"
	settingsrepo "katze_backend/internal/settings/repository"
	"katze_backend/platform/ai/gemini"
	"katze_backend/platform/config"
	"katze_backend/platform/db"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/phone"
	"katze_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const (
	storageBucketEnsureErrPrefix = "failed to ensure storage bucket exists: "
	storageBucketEnsureErrMsg    = "failed to ensure storage bucket exists"
	shutdownTimeout              = 10 * time.Second
)

type repositories struct {
	listings listingrepo.Repository
	reports  reportrepo.Repository
	requests requestrepo.Repository
	settings settingsrepo.Repository
}

// ensureBucket wraps the retry logic for verifying a storage bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error(storageBucketEnsureErrMsg, "error", err, "bucket", bucket)
		panic(storageBucketEnsureErrPrefix + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	m := metrics.New()
	val := validator.New()
	can := authz.NewPolicy()

	repos, pool := initRepositories(ctx, cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	storageSvc := initStorage(cfg, log)
	ensureBucket(ctx, log, storageSvc, "listing photos", cfg.GetMinioBucketListingPhotos())
	ensureBucket(ctx, log, storageSvc, "report photos", cfg.GetMinioBucketReportPhotos())
	ensureBucket(ctx, log, storageSvc, "site assets", cfg.GetMinioBucketSiteAssets())

	pipeline := intake.New(
		intake.NewStager(cfg.GetStagingDir(), cfg.GetMinIOMaxFileSize()),
		initGate(ctx, cfg, log, m),
		storageSvc,
		log,
	)

	sink, closeSink := initSink(cfg, log)
	if closeSink != nil {
		defer closeSink()
	}
	dispatcher := dispatch.New(sink, cfg.GetDispatchBufferSize(), log, m)

	// ========================================================================
	// Domain Modules
	// ========================================================================

	listingsModule := listings.NewModule(repos.listings, pipeline, cfg.GetMinioBucketListingPhotos(), can, val, log, m)
	reportsModule := reports.NewModule(repos.reports, pipeline, cfg.GetMinioBucketReportPhotos(), can, val, log, m)
	requestsModule := requests.NewModule(repos.requests, listingsModule.Service(), dispatcher,
		phone.NewNormalizer(cfg.GetPhoneRegion()), can, val, log, m)
	moderationModule := moderation.NewModule(listingsModule.Service(), reportsModule.Service(), requestsModule.Service(), can, val)
	settingsModule := settings.NewModule(repos.settings, pipeline, storageSvc, cfg.GetMinioBucketSiteAssets(), can, val, log)
	screeningModule := screening.NewModule(pipeline)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Metrics: m.Handler(),
		Modules: []apphttp.Module{
			listingsModule,
			reportsModule,
			requestsModule,
			moderationModule,
			settingsModule,
			screeningModule,
		},
	}
	if pool != nil {
		app.Health = pool
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.GetHTTPWriteTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func initRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (repositories, *pgxpool.Pool) {
	if cfg.GetDatabaseURL() == "" {
		log.Warn("DATABASE_URL not configured; using in-memory repositories")
		listings := listingrepo.NewMemory()
		return repositories{
			listings: listings,
			reports:  reportrepo.NewMemory(),
			requests: requestrepo.NewMemory(listings),
			settings: settingsrepo.NewMemory(),
		}, nil
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	return repositories{
		listings: listingrepo.New(pool),
		reports:  reportrepo.New(pool),
		requests: requestrepo.New(pool),
		settings: settingsrepo.New(pool),
	}, pool
}

func initStorage(cfg *config.Config, log *logger.Logger) storage.StorageService {
	if !cfg.IsMinIOEnabled() {
		if !cfg.IsDevelopment() {
			panic("MINIO_ENDPOINT is required outside development")
		}
		log.Warn("MINIO_ENDPOINT not configured; uploads are kept in memory")
		return storage.NewMemoryService()
	}

	svc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		panic("failed to initialize storage: " + err.Error())
	}
	return svc
}

// initGate returns nil when no classifier is configured; gated submissions then
// answer with a service-unavailable error.
func initGate(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) intake.Gate {
	if !cfg.IsGeminiEnabled() {
		log.Warn("GOOGLE_API_KEY not configured; listing submissions are unavailable")
		return nil
	}

	client, err := gemini.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize gemini client", "error", err)
		panic("failed to initialize gemini client: " + err.Error())
	}

	return gate.New(client, gemini.IsOverloaded, log,
		gate.WithPolicy(cfg.GetGateMaxAttempts(), cfg.GetGateRetryDelay()),
		gate.WithMetrics(m),
	)
}

func initSink(cfg *config.Config, log *logger.Logger) (dispatch.Sink, func()) {
	if cfg.GetAutomationWebhookURL() == "" {
		log.Warn("AUTOMATION_WEBHOOK_URL not configured; adoption request events are discarded")
		return dispatch.NoopSink{}, nil
	}

	if cfg.GetRedisURL() != "" {
		queue, err := dispatch.NewQueueSink(cfg)
		if err != nil {
			log.Error("failed to initialize automation queue; posting directly", "error", err)
		} else {
			log.Info("automation events queued for the worker", "queue", cfg.GetAsynqQueueName())
			return queue, func() { _ = queue.Close() }
		}
	}

	return dispatch.NewWebhookSink(cfg.GetAutomationWebhookURL(), cfg.GetAutomationWebhookTimeout()), nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
