// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/buildinfo"
	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/maintenance"
	"github.com/garyellow/xoso-linebot-go/internal/metrics"
	"github.com/garyellow/xoso-linebot-go/internal/modules/cang"
	"github.com/garyellow/xoso-linebot-go/internal/modules/dao"
	"github.com/garyellow/xoso-linebot-go/internal/modules/help"
	"github.com/garyellow/xoso-linebot-go/internal/modules/ketqua"
	"github.com/garyellow/xoso-linebot-go/internal/modules/menu"
	"github.com/garyellow/xoso-linebot-go/internal/modules/phongthuy"
	"github.com/garyellow/xoso-linebot-go/internal/modules/ungho"
	"github.com/garyellow/xoso-linebot-go/internal/modules/usage"
	"github.com/garyellow/xoso-linebot-go/internal/modules/xien"
	"github.com/garyellow/xoso-linebot-go/internal/r2client"
	"github.com/garyellow/xoso-linebot-go/internal/ratelimit"
	"github.com/garyellow/xoso-linebot-go/internal/results"
	"github.com/garyellow/xoso-linebot-go/internal/scraper"
	"github.com/garyellow/xoso-linebot-go/internal/sentry"
	"github.com/garyellow/xoso-linebot-go/internal/session"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
	"github.com/garyellow/xoso-linebot-go/internal/webhook"
)

const repositoryURL = "https://github.com/garyellow/xoso-linebot-go"

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	db             *storage.DB
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	sessions       *session.Store
	userLimiter    *ratelimit.KeyedLimiter
	loader         *results.Loader
	schedule       *maintenance.ScheduleStore // nil without R2
	webhookHandler *webhook.Handler
	server         *http.Server
	wg             sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(logger.Options{
		Level:               cfg.LogLevel,
		Writer:              os.Stdout,
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "xoso-linebot-go")
	if buildinfo.Version != "" {
		log = log.WithField("version", buildinfo.Version)
	}
	if id := instanceID(cfg); id != "" {
		log = log.WithField("instance_id", id)
	}

	// Set as default logger so package-level slog.*Context() calls pick up
	// the chat, user and request ids.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")

	if err := sentry.Initialize(sentry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.SentryEnvironment,
		Release:          releaseName(cfg),
		SampleRate:       cfg.SentrySampleRate,
		TracesSampleRate: cfg.SentryTracesSampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	var store *r2client.Client
	var schedule *maintenance.ScheduleStore
	if cfg.R2Enabled {
		store, err = r2client.New(ctx, r2client.Config{
			Endpoint:    fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			BucketName:  cfg.R2BucketName,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("r2: %w", err)
		}
		schedule, err = maintenance.NewScheduleStore(store, cfg.R2ResultsKey+config.R2ScheduleSuffix, config.R2RequestTimeout)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("schedule: %w", err)
		}
	}
	loader := newLoader(cfg, db, store, m, log)

	sessions := session.NewStore(cfg.Bot.SessionCapacity, cfg.Bot.SessionTTL, m)
	userLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         cfg.Bot.UserRateLimitBurst,
		RefillRate:    cfg.Bot.UserRateLimitRefillPerSec,
		DailyLimit:    cfg.Bot.UserDailyLimit,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	processor := newProcessor(cfg, db, sessions, userLimiter, m, log)

	webhookHandler, err := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		ChannelToken:  cfg.LineChannelToken,
		BotConfig:     &cfg.Bot,
		Metrics:       m,
		Logger:        log,
		Processor:     processor,
	})
	if err != nil {
		userLimiter.Stop()
		_ = db.Close()
		return nil, fmt.Errorf("webhook: %w", err)
	}

	app := &Application{
		cfg:            cfg,
		logger:         log,
		db:             db,
		metrics:        m,
		registry:       registry,
		sessions:       sessions,
		userLimiter:    userLimiter,
		loader:         loader,
		schedule:       schedule,
		webhookHandler: webhookHandler,
	}

	gin.SetMode(gin.ReleaseMode)
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.newRouter(),
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// newProcessor registers the bot modules. Registration order decides which
// module answers text several of them recognize.
func newProcessor(cfg *config.Config, db *storage.DB, sessions *session.Store, userLimiter *ratelimit.KeyedLimiter, m *metrics.Metrics, log *logger.Logger) *bot.Processor {
	menuHandler := menu.NewHandler(log)

	// A nil *KeyedLimiter must not become a non-nil Quota.
	var quota usage.Quota
	if userLimiter != nil {
		quota = userLimiter
	}

	registry := bot.NewRegistry()
	registry.Use(
		bot.RecoveryMiddleware(log),
		bot.LoggingMiddleware(log),
		bot.MetricsMiddleware(m),
	)
	registry.Register(menuHandler)
	registry.Register(help.NewHandler(&cfg.Bot))
	registry.Register(usage.NewHandler(quota, log))
	registry.Register(ungho.NewHandler(&cfg.Bot))
	registry.Register(xien.NewHandler(sessions, m, log, &cfg.Bot))
	registry.Register(cang.NewHandler(sessions, m, log, &cfg.Bot))
	registry.Register(dao.NewHandler(sessions, m, log, &cfg.Bot))
	registry.Register(ketqua.NewHandler(results.NewService(db), sessions, m, log))
	registry.Register(phongthuy.NewHandler(sessions, m, log))

	return bot.NewProcessor(bot.ProcessorConfig{
		Registry:    registry,
		Sessions:    sessions,
		UserLimiter: userLimiter,
		Fallback:    menuHandler,
		Logger:      log,
		BotConfig:   &cfg.Bot,
	})
}

// newLoader wires the configured result sources. store may be nil.
func newLoader(cfg *config.Config, db *storage.DB, store *r2client.Client, m *metrics.Metrics, log *logger.Logger) *results.Loader {
	opts := results.Options{
		CSVPath:   cfg.ResultsCSVPath,
		SourceURL: cfg.ResultsSourceURL,
		Metrics:   m,
		Logger:    log,
	}
	if cfg.ResultsSourceURL != "" {
		opts.Scraper = scraper.NewClient(cfg.ScraperTimeout, cfg.ScraperMaxRetries,
			scraper.WithRetryDelay(config.ScraperRetryInitial),
			scraper.WithMetrics(m),
		)
	}
	if store != nil {
		opts.Store = store
		opts.SnapshotKey = cfg.R2ResultsKey
		log.WithField("bucket", cfg.R2BucketName).WithField("key", cfg.R2ResultsKey).Info("R2 results snapshot enabled")
	}
	return results.NewLoader(db, opts)
}

func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/", a.redirectToRepository)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	if a.webhookHandler != nil {
		router.POST("/webhook", a.webhookHandler.Handle)
	}
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	return router
}

func (a *Application) redirectToRepository(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, repositoryURL)
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheckTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	rows, err := a.db.CountResults(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to count results in readiness check")
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"results":  rows,
		"features": gin.H{
			"results_source": a.cfg.HasResultsSource(),
			"r2_snapshot":    a.cfg.R2Enabled,
			"sentry":         sentry.IsEnabled(),
		},
	})
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT/SIGTERM.
//
// Background jobs are stopped and awaited before resources are closed so
// no job writes to a closed database.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	serverErr := a.startHTTPServer()

	select {
	case sig := <-a.waitForShutdownSignal():
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErr:
		a.logger.WithError(err).Error("HTTP server stopped unexpectedly")
	}

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startHTTPServer starts the HTTP server in a goroutine. The channel
// receives an error if the listener fails.
func (a *Application) startHTTPServer() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func (a *Application) waitForShutdownSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit
}

// shutdown stops the HTTP server, waits for in-flight webhook events, then
// closes resources.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Waiting for webhook events to complete...")
	if err := a.webhookHandler.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
	}

	a.logger.Info("Closing resources...")
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}
	if a.userLimiter != nil {
		a.userLimiter.Stop()
	}

	sentry.Flush(2 * time.Second)
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}

func instanceID(cfg *config.Config) string {
	if cfg.InstanceID != "" {
		return cfg.InstanceID
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return ""
}

func releaseName(cfg *config.Config) string {
	if cfg.SentryRelease != "" {
		return cfg.SentryRelease
	}
	return buildinfo.Version
}
