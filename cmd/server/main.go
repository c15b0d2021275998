package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	catalogapp "github.com/nvictorme/nikola-sub002/internal/application/catalog"
	pricingapp "github.com/nvictorme/nikola-sub002/internal/application/pricing"
	tradeapp "github.com/nvictorme/nikola-sub002/internal/application/trade"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/cache"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/config"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/logger"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/persistence"
	"github.com/nvictorme/nikola-sub002/internal/infrastructure/telemetry"
	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/handler"
	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/middleware"
	"github.com/nvictorme/nikola-sub002/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// OTLP log export is teed next to the primary output
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := bootLog
	if logProvider.IsEnabled() {
		if log, err = logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level))); err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pricing engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.Profiling.Enabled,
		ServerAddress:   cfg.Telemetry.Profiling.ServerAddress,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
		profiler, _ = telemetry.NewProfiler(telemetry.ProfilerConfig{}, log)
	}
	if profiler.IsEnabled() && cfg.Telemetry.Profiling.SpanProfiles {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link profiles to spans", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.MetricsEnabled,
		SlowQueryThreshold: dbTracing.SlowQueryThresh,
	}, log)
	if err != nil {
		log.Warn("Database metrics disabled", zap.Error(err))
	}

	// Pricing metrics; the gauge of outstanding credit reads the ledger
	creditLedger := persistence.NewGormCreditLedger(db.DB, log)
	var pricingMetrics *telemetry.PricingMetrics
	var httpMeter metric.Meter
	if meterProvider.IsEnabled() {
		httpMeter = meterProvider.Meter("http.server")
		pricingMetrics, err = telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{
			Meter:            meterProvider.Meter("pricing"),
			Logger:           log,
			ExposureProvider: creditLedger,
		})
		if err != nil {
			log.Warn("Pricing metrics disabled", zap.Error(err))
			pricingMetrics = nil
		} else {
			pricingMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
		}
	}

	// Factor store
	storeOpts := []cache.FactorStoreFactoryOption{cache.WithLogger(log)}
	if pricingMetrics != nil {
		storeOpts = append(storeOpts, cache.WithFactorFallbacks(pricingMetrics))
	}
	factorStore, closeStore := cache.NewFactorStoreFactory(cfg.Redis, cfg.Pricing, storeOpts...).CreateStore(ctx)
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Error closing factor store", zap.Error(err))
		}
	}()

	loc, err := cfg.Pricing.Location()
	if err != nil {
		log.Fatal("Invalid pricing timezone", zap.String("timezone", cfg.Pricing.Timezone), zap.Error(err))
	}
	offers := pricing.NewOfferEvaluator(pricing.WithOfferLocation(loc), pricing.WithOfferLogger(log))
	resolver := pricing.NewPriceResolver(offers)

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	historyRepo := persistence.NewGormPriceHistoryRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB, log)

	// Application services
	factorService := pricingapp.NewFactorConfigService(factorStore, log)
	factorService.SetMetrics(pricingMetrics)
	quoteService := pricingapp.NewQuoteService(productRepo, customerRepo, factorStore, resolver, log)
	quoteService.SetMetrics(pricingMetrics)
	orderService := tradeapp.NewOrderService(txScope, orderRepo, factorStore, resolver, log)
	orderService.SetMetrics(pricingMetrics)
	productPricingService := catalogapp.NewProductPricingService(productRepo, historyRepo, loc, log)
	productPricingService.SetMetrics(pricingMetrics)

	// Health checks: the database is required, the factor cache is not
	systemHandler := handler.NewSystemHandler(telemetry.ServiceVersion).
		WithCritical("database", db.Ping)
	if pinger, ok := factorStore.(interface{ Ping(context.Context) error }); ok {
		systemHandler.WithOptional("factor_cache", pinger.Ping)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.Env == "production"

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    serviceName,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           corsCfg,
		Security:       securityCfg,
		TracingEnabled: tracerProvider.IsEnabled(),
		Meter:          httpMeter,
		Profiling:      profiler.IsEnabled(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Factors:  handler.NewFactorConfigHandler(factorService),
		Quotes:   handler.NewQuoteHandler(quoteService),
		Orders:   handler.NewOrderHandler(orderService),
		Products: handler.NewProductPricingHandler(productPricingService),
		System:   systemHandler,
	}, log)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	pricingMetrics.Stop()
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
