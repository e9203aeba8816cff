package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	ledgerapp "github.com/erp/backoffice/internal/application/ledger"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	reportapp "github.com/erp/backoffice/internal/application/report"
	tenancyapp "github.com/erp/backoffice/internal/application/tenancy"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/erp/backoffice/docs"
)

//	@title			Back-office Ledger API
//	@version		1.0
//	@description	Multi-tenant product catalog, sales and purchase ledger, payables, receivables and reports.

//	@contact.name	API Support
//	@contact.url	https://github.com/erp/backoffice

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		ServiceName:           cfg.Telemetry.ServiceName,
		CollectorEndpoint:     cfg.Telemetry.CollectorEndpoint,
		Insecure:              cfg.Telemetry.Insecure,
		TracesEnabled:         cfg.Telemetry.Enabled,
		SamplingRatio:         cfg.Telemetry.SamplingRatio,
		MetricsEnabled:        cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		MetricsExportInterval: cfg.Telemetry.MetricsExportInterval,
		LogsEnabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
	}

	// The log pipeline comes first so the application logger can tee into it
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	var extraCores []zapcore.Core
	if core := logProvider.Core(logger.ParseLevel(cfg.Log.Level)); core != nil {
		extraCores = append(extraCores, core)
	}
	log, err := logger.New(logCfg, extraCores...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back-office API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TracingEnabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		MetricsEnabled: telemetryCfg.MetricsEnabled,
		LogFullSQL:     cfg.Telemetry.DBLogFullSQL,
		SlowThreshold:  cfg.Database.SlowThreshold,
	}, meterProvider, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	obligationRepo := persistence.NewGormObligationRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	transactionScope := persistence.NewGormTransactionScope(db.DB)

	// Business metrics
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("ledger"), log)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	collectCtx, stopCollect := context.WithCancel(ctx)
	defer stopCollect()
	if telemetryCfg.MetricsEnabled {
		ledgerMetrics.StartLowStockCollection(collectCtx, telemetry.NewGormLowStockSource(db.DB), cfg.Telemetry.LowStockInterval)
		defer ledgerMetrics.Stop()
	}

	// Application services
	productService := catalogapp.NewProductService(productRepo)
	customerService := partnerapp.NewPartyService(customerRepo)
	supplierService := partnerapp.NewPartyService(supplierRepo)

	writer := ledgerapp.NewWriter(transactionScope, productRepo, customerRepo, supplierRepo, transactionRepo,
		ledgerapp.WriterConfig{
			ReceivableDueDays:   cfg.Ledger.ReceivableDueDays,
			PayableDueDays:      cfg.Ledger.PayableDueDays,
			RejectNegativeStock: cfg.Ledger.RejectNegativeStock,
		}, log)
	writer.SetMetrics(ledgerMetrics)

	obligationTracker := ledgerapp.NewObligationTracker(obligationRepo, log)
	obligationTracker.SetMetrics(ledgerMetrics)

	queryService := ledgerapp.NewQueryService(transactionRepo)
	reportService := reportapp.NewAggregationService(productRepo, obligationRepo, reportRepo, log)

	// Tenant directory with Redis or in-memory cache
	tenantCache, err := cache.NewTenantCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache(ctx)
	if err != nil {
		log.Fatal("Failed to create tenant cache", zap.Error(err))
	}
	defer func() {
		if err := tenantCache.Close(); err != nil {
			log.Error("Error closing tenant cache", zap.Error(err))
		}
	}()
	directory := tenancyapp.NewDirectory(membershipRepo, tenantCache, cfg.Tenancy.CacheTTL, log)

	// HTTP layer
	middleware.SetupValidator()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion)
	systemHandler.AddCheck("database", db.Ping)
	if pinger, ok := tenantCache.(interface{ Ping(context.Context) error }); ok {
		systemHandler.AddCheck("cache", pinger.Ping)
	}

	engineCfg := router.EngineConfig{
		Logger:  log,
		HTTP:    cfg.HTTP,
		Swagger: cfg.Swagger,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
			SkipPaths:   []string{"/health"},
		},
		Tenants: directory,
	}
	if meterProvider.IsEnabled() {
		httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("http.server"))
		if err != nil {
			log.Fatal("Failed to create HTTP metrics", zap.Error(err))
		}
		engineCfg.Metrics = httpMetrics
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engineCfg.RateLimiter = limiter
	}
	if cfg.Auth.Enabled {
		engineCfg.Tokens = auth.NewJWTService(cfg.Auth)
	} else {
		log.Warn("Token authentication disabled, trusting X-User-ID and X-Tenant-ID headers")
	}

	engine := router.NewEngine(engineCfg, router.Handlers{
		Products:  handler.NewProductHandler(productService),
		Customers: handler.NewPartyHandler(customerService),
		Suppliers: handler.NewPartyHandler(supplierService),
		Ledger:    handler.NewLedgerHandler(writer, queryService),
		Finance:   handler.NewFinanceHandler(obligationTracker),
		Reports:   handler.NewReportHandler(reportService),
		System:    systemHandler,
	})

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	stopCollect()
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Log provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
