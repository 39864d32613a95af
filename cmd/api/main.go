package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/novavoice/nova-voice/cmd/mainconfig"
	"github.com/novavoice/nova-voice/internal/api/router"
	"github.com/novavoice/nova-voice/internal/app/bootstrap"
	"github.com/novavoice/nova-voice/internal/assessment"
	appconfig "github.com/novavoice/nova-voice/internal/config"
	"github.com/novavoice/nova-voice/internal/events"
	httpmiddleware "github.com/novavoice/nova-voice/internal/http/middleware"
	"github.com/novavoice/nova-voice/internal/leads"
	"github.com/novavoice/nova-voice/internal/observability/metrics"
	"github.com/novavoice/nova-voice/internal/reports"
	"github.com/novavoice/nova-voice/internal/site"
	"github.com/novavoice/nova-voice/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.ForEnv(cfg.Env, cfg.LogLevel)
	logger.Info("starting nova-voice API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"persistence", cfg.PersistenceBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	metricsHandler, landingMetrics := setupMetrics()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}

	var clients mainconfig.Clients
	if mainconfig.NeedsAWS(cfg) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return err
		}
		clients = mainconfig.NewClients(awsCfg, cfg)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	catalog, err := site.LoadContent(cfg.SiteContentPath)
	if err != nil {
		return err
	}

	store := bootstrap.BuildAssessmentStore(cfg, pool, clients.Dynamo, logger)
	if store.Backend == bootstrap.BackendPostgres {
		reader, err := assessment.OpenSQLReader(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer reader.Close()
		store.Reader = reader
	}

	var outbox *events.OutboxStore
	if pool != nil {
		outbox = events.NewOutboxStore(pool)
	}

	assessmentService := assessment.NewService(store.Writer, logger).WithMetrics(landingMetrics)
	leadsRepo := leads.Repository(leads.NewInMemoryRepository())
	if pool != nil {
		leadsRepo = leads.NewPostgresRepository(pool)
	}
	leadsService := leads.NewService(leadsRepo, catalog.DemoForm, logger).WithMetrics(landingMetrics)
	if outbox != nil {
		assessmentService.WithEvents(outbox)
		leadsService.WithEvents(outbox)
	}

	sessions := assessment.NewSessions(bootstrap.BuildSessionStore(redisClient, cfg, logger), assessmentService, logger)

	var reportsHandler *reports.Handler
	if store.Reader != nil {
		var archiver *reports.S3Archiver
		if clients.S3 != nil {
			archiver = reports.NewS3Archiver(clients.S3, cfg.ExportBucket, logger)
		}
		reportsHandler = reports.NewHandler(store.Reader, archiver, logger)
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	r := router.New(&router.Config{
		Logger:             logger,
		SiteHandler:        site.NewHandler(catalog, bootstrap.BuildEmbedConfig(cfg), logger),
		AssessmentHandler:  assessment.NewHandler(assessmentService, sessions, logger),
		LeadsHandler:       leads.NewHandler(leadsService, logger),
		ReportsHandler:     reportsHandler,
		Health:             buildHealth(pool, redisClient),
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SubmitLimiter:      limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// In-flight assessment saves finish before the pool closes.
		assessmentService.Wait()
		return err
	})

	if outbox != nil {
		email := bootstrap.BuildEmailSender(cfg, clients.SES, logger)
		if handler := bootstrap.BuildDeliveryHandler(cfg, clients.SQS, email, logger); handler != nil {
			deliverer := events.NewDeliverer(outbox, handler, logger).
				WithInterval(cfg.OutboxPollInterval).
				WithMaxElapsed(cfg.OutboxMaxElapsed).
				WithMaxAttempts(cfg.OutboxMaxAttempts).
				WithRetryDelay(cfg.OutboxRetryBase, cfg.OutboxRetryMax).
				WithMetrics(landingMetrics)
			g.Go(func() error {
				deliverer.Start(gctx)
				return nil
			})
		}
	} else {
		logger.Warn("no postgres pool; lead events will not be queued")
	}

	if relocator := bootstrap.BuildRelocator(cfg, landingMetrics, logger); relocator != nil {
		g.Go(func() error {
			relocator.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}

// setupMetrics registers the landing collectors on a private registry.
func setupMetrics() (http.Handler, *metrics.LandingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewLandingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// connectPostgresPool returns nil when url is empty or the database is unreachable.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres ping failed", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func buildHealth(pool *pgxpool.Pool, redisClient *redis.Client) *router.HealthHandler {
	health := router.NewHealthHandler()
	if pool != nil {
		health.WithCheck("postgres", pool.Ping)
	}
	if redisClient != nil {
		health.WithCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	return health
}
