package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	invapp "github.com/erp/manufacturing/internal/application/inventory"
	prodapp "github.com/erp/manufacturing/internal/application/production"
	"github.com/erp/manufacturing/internal/application/retry"
	"github.com/erp/manufacturing/internal/infrastructure/auth"
	"github.com/erp/manufacturing/internal/infrastructure/cache"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/event"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/infrastructure/migration"
	"github.com/erp/manufacturing/internal/infrastructure/persistence"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/erp/manufacturing/internal/infrastructure/scheduler"
	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/erp/manufacturing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Manufacturing Ledger API
//	@version		1.0
//	@description	Bills of materials, production requests, stock reservations and the inventory audit trail.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token carrying the actor ID and role. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry: traces, metrics, logs and profiles share one collector
	exporter := telemetry.ExporterConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracerConfig{
		ExporterConfig: exporter,
		SamplingRatio:  cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	metricsExporter := exporter
	metricsExporter.Enabled = cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		ExporterConfig: metricsExporter,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	logsExporter := exporter
	logsExporter.Enabled = cfg.Telemetry.LogsEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, logsExporter, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.Bridge(log, loggerProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting manufacturing ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := migrateSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfigFrom(cfg), log); err != nil {
			log.Warn("Database tracing not registered", zap.Error(err))
		}
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meter, cfg.Telemetry.DBSlowQueryThresh)
	if err != nil {
		log.Warn("Database metrics not registered", zap.Error(err))
	}
	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Warn("Business metrics not registered", zap.Error(err))
	}

	// Initialize repositories
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)
	requestRepo := persistence.NewGormProductionRequestRepository(db.DB)
	reservationRepo := persistence.NewGormStockReservationRepository(db.DB)
	adjustmentRepo := persistence.NewGormInventoryAdjustmentRepository(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	productionScope := persistence.NewGormProductionTransactionScope(db.DB)

	// Initialize application services
	retryPolicy := retry.Policy{
		MaxRetries: cfg.Transaction.MaxRetries,
		Backoff:    cfg.Transaction.RetryBackoff,
	}
	recorder := invapp.NewAuditRecorder(log)

	materialService := catalogapp.NewMaterialService(materialRepo, log, bomRepo, requestRepo)
	productService := catalogapp.NewProductService(productRepo, materialRepo, bomRepo, log)

	productionService := prodapp.NewService(requestRepo, productionScope, recorder, log)
	productionService.SetRetryPolicy(retryPolicy)

	reservationService := invapp.NewReservationService(productRepo, reservationRepo, inventoryScope, recorder, log)
	reservationService.SetRetryPolicy(retryPolicy)
	reservationService.SetDefaultExpiration(cfg.Reservation.DefaultExpiration)
	reservationService.SetSweepBatchSize(cfg.Reservation.SweepBatchSize)

	adjustmentService := invapp.NewAdjustmentService(adjustmentRepo, inventoryScope, recorder, log)
	adjustmentService.SetRetryPolicy(retryPolicy)

	if businessMetrics != nil {
		productionService.SetBusinessMetrics(businessMetrics)
		reservationService.SetBusinessMetrics(businessMetrics)
		adjustmentService.SetBusinessMetrics(businessMetrics)
	}

	// Initialize event bus and handlers
	eventStore, err := cache.NewIdempotencyStore(ctx, cfg, cache.EventKeyPrefix, log)
	if err != nil {
		log.Fatal("Failed to create event idempotency store", zap.Error(err))
	}
	requestStore, err := cache.NewIdempotencyStore(ctx, cfg, cache.RequestKeyPrefix, log)
	if err != nil {
		log.Fatal("Failed to create request idempotency store", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)

	lowStockHandler := invapp.NewLowStockAlertHandler(log).
		WithNotifier(invapp.NewLoggingStockAlertNotifier(log))
	if businessMetrics != nil {
		lowStockHandler = lowStockHandler.WithBusinessMetrics(businessMetrics)
	}
	eventBus.Subscribe(event.NewIdempotentHandler(lowStockHandler, eventStore, cfg.Event.IdempotencyTTL, log))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	productionService.SetEventPublisher(eventBus)
	reservationService.SetEventPublisher(eventBus)
	adjustmentService.SetEventPublisher(eventBus)
	log.Info("Event bus started")

	// Expired manual reservations are swept in the background
	sweeper, err := scheduler.NewReservationSweeper(reservationService, log,
		scheduler.ReservationSweeperConfigFrom(cfg.Reservation))
	if err != nil {
		log.Fatal("Failed to create reservation sweeper", zap.Error(err))
	}
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("Failed to start reservation sweeper", zap.Error(err))
	}

	// Build the HTTP API
	api := router.New(router.Options{
		HTTP:             cfg.HTTP,
		JWTService:       auth.NewJWTService(cfg.JWT),
		IdempotencyStore: requestStore,
		IdempotencyTTL:   cfg.Event.RequestKeyTTL,
		Meter:            meter,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
			SkipPaths:   []string{"/health", "/ready"},
		},
		Profiling: middleware.ProfilingConfig{
			Enabled:   cfg.Profiling.Enabled,
			SkipPaths: []string{"/health", "/ready"},
		},
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
		Logger: log,
	}, router.Handlers{
		Materials:    handler.NewMaterialHandler(materialService),
		Products:     handler.NewProductHandler(productService),
		Requests:     handler.NewProductionRequestHandler(productionService),
		Reservations: handler.NewReservationHandler(reservationService),
		Adjustments:  handler.NewAdjustmentHandler(adjustmentService),
		Health:       handler.NewHealthHandler(db),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        api.Engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping reservation sweeper", zap.Error(err))
	}
	api.Stop()
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := requestStore.Close(); err != nil {
		log.Error("Error closing request idempotency store", zap.Error(err))
	}
	if err := eventStore.Close(); err != nil {
		log.Error("Error closing event idempotency store", zap.Error(err))
	}
	if err := dbMetrics.Close(); err != nil {
		log.Error("Error unregistering database metrics", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

// migrateSchema brings the schema up to date. PostgreSQL uses the versioned
// migrations embedded in the binary; SQLite is created from the models.
func migrateSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == config.DriverSQLite {
		return db.DB.AutoMigrate(models.AllModels()...)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	return m.Up()
}
