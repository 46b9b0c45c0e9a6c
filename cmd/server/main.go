package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appfinance "github.com/erp/soreconcile/internal/application/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/infrastructure/cache"
	"github.com/erp/soreconcile/internal/infrastructure/config"
	"github.com/erp/soreconcile/internal/infrastructure/event"
	"github.com/erp/soreconcile/internal/infrastructure/logger"
	"github.com/erp/soreconcile/internal/infrastructure/persistence"
	"github.com/erp/soreconcile/internal/infrastructure/telemetry"
	"github.com/erp/soreconcile/internal/interfaces/http/handler"
	"github.com/erp/soreconcile/internal/interfaces/http/middleware"
	"github.com/erp/soreconcile/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env-file", "", "Load this .env file instead of ./.env")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env)
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	logCfg.ServiceName = cfg.App.Name
	baseLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	providers, log := setupTelemetry(ctx, cfg, baseLog)
	defer func() { _ = log.Sync() }()

	log.Info("Starting sales order reconciliation",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	// Ledger database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Warn("Database tracing not registered", zap.Error(err))
	}
	var dbMetrics *telemetry.LedgerDBMetrics
	if providers.meter.IsEnabled() {
		dbMetrics, err = telemetry.RegisterLedgerDBMetrics(db.DB, providers.meter.Meter("db.client"), log)
		if err != nil {
			log.Warn("Ledger database metrics unavailable", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Repositories
	orderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	moveLineRepo := persistence.NewGormMoveLineRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	statementLineRepo := persistence.NewGormStatementLineRepository(db.DB)
	reconciler := persistence.NewGormReconciler(db)

	// Application services
	serviceOpts := []appfinance.ServiceOption{
		appfinance.WithMatchingConfig(cfg.Reconciliation.Matching()),
	}
	if providers.meter.IsEnabled() {
		recMetrics, err := telemetry.NewReconciliationMetrics(providers.meter.Meter("reconciliation"), log)
		if err != nil {
			log.Warn("Reconciliation metrics unavailable", zap.Error(err))
		} else {
			serviceOpts = append(serviceOpts, appfinance.WithOutcomeRecorder(recMetrics))
		}
	}
	paymentService := appfinance.NewPaymentReconciliationService(
		orderRepo, invoiceRepo, moveLineRepo, reconciler, log, serviceOpts...,
	)
	statementService := appfinance.NewStatementReconciliationService(
		orderRepo, invoiceRepo, moveLineRepo, reconciler, log, serviceOpts...,
	)
	labeler := appfinance.NewMoveLineLabeler(log)

	// Idempotency store for redelivered hooks
	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cfg.Idempotency,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	idemMetrics := &event.IdempotencyMetrics{}
	idemCfg := shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL, Enabled: true}
	for _, h := range []shared.EventHandler{
		appfinance.NewPaymentPostedHandler(paymentService, log),
		appfinance.NewStatementLineReconciledHandler(statementService, log),
	} {
		eventBus.Subscribe(event.NewIdempotentHandler(h, store, log,
			event.WithIdempotencyConfig(idemCfg),
			event.WithIdempotencyMetrics(idemMetrics),
		))
		log.Info("Event handler registered", zap.Strings("event_types", h.EventTypes()))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanEnricher(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: providers.meter,
			Enabled:       cfg.Telemetry.MetricsEnabled,
		}),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	rerunLimiter := middleware.NewRateLimiter(limiterCtx, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)

	reconciliationHandler := handler.NewReconciliationHandler(
		paymentRepo, statementLineRepo, eventBus,
		paymentService, statementService, labeler, log,
	)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, db)

	router.RegisterHealth(engine, systemHandler)
	router.NewRouter(engine).
		Register(router.HookGroup(reconciliationHandler)).
		Register(router.OperatorGroup(reconciliationHandler, middleware.RateLimit(rerunLimiter))).
		Register(router.SystemGroup(systemHandler)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopLimiter()

	// Stop accepting events after the last request drained, then wait for
	// in-flight dispatches.
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	stats := idemMetrics.Stats()
	log.Info("Hook events handled",
		zap.Int64("processed", stats.EventsProcessed),
		zap.Int64("duplicate", stats.EventsDuplicate),
		zap.Int64("failed", stats.EventsFailed),
	)
	if err := store.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if dbMetrics != nil {
		_ = dbMetrics.Unregister()
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	providers.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}
