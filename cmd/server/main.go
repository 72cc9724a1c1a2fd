package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-report-service/internal/domain/entity"
	"agency-report-service/internal/domain/repository"
	"agency-report-service/internal/infrastructure/config"
	"agency-report-service/internal/infrastructure/persistence"
	storeRepo "agency-report-service/internal/interface/repository"
	"agency-report-service/internal/interface/rest"
	"agency-report-service/internal/usecase"
	"agency-report-service/pkg/analytics"
	"agency-report-service/pkg/logger"
	"agency-report-service/pkg/metrics"
	"agency-report-service/pkg/timewindow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Agency Report Service", "version", cfg.AppVersion, "store", cfg.StoreDriver)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("agency_report", registry)

	// Set up stores
	sources := usecase.ReportSources{Records: make(map[entity.EntityType]repository.RecordSource)}
	var closers []func()

	switch cfg.StoreDriver {
	case config.StoreMongo:
		log.Info("Connecting to MongoDB")
		mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		closers = append(closers, func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error("MongoDB disconnect error", "error", err)
			}
		})

		type indexed interface {
			EnsureIndexes(ctx context.Context) error
		}
		var toIndex []indexed
		for _, et := range entity.BookingEntityTypes {
			r := storeRepo.NewMongoRecordRepository(db, et)
			sources.Records[et] = r
			toIndex = append(toIndex, r)
		}
		customers := storeRepo.NewMongoCustomerRepository(db)
		payments := storeRepo.NewMongoPaymentRepository(db)
		logs := storeRepo.NewMongoActivityLogRepository(db)
		sources.Customers, sources.Payments, sources.Logs = customers, payments, logs
		toIndex = append(toIndex, customers, payments, logs)

		if cfg.MongoEnsureIndexes {
			for _, r := range toIndex {
				if err := r.EnsureIndexes(ctx); err != nil {
					log.Warn("Failed to create indexes", "error", err)
				}
			}
		}

	case config.StoreFirestore:
		log.Info("Connecting to Firestore", "project", cfg.FirestoreProjectID)
		client, err := persistence.NewFirestoreClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			log.Fatal("Failed to connect to Firestore", "error", err)
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				log.Error("Firestore close error", "error", err)
			}
		})

		for _, et := range entity.BookingEntityTypes {
			sources.Records[et] = storeRepo.NewFirestoreRecordRepository(client, et)
		}
		sources.Customers = storeRepo.NewFirestoreCustomerRepository(client)
		sources.Payments = storeRepo.NewFirestorePaymentRepository(client)
		sources.Logs = storeRepo.NewFirestoreActivityLogRepository(client)

	case config.StoreMemory:
		log.Warn("Using in-memory store, reports will be empty")
		for _, et := range entity.BookingEntityTypes {
			sources.Records[et] = storeRepo.NewMemoryRecordRepository(et)
		}
		sources.Customers = storeRepo.NewMemoryCustomerRepository()
		sources.Payments = storeRepo.NewMemoryPaymentRepository()
		sources.Logs = storeRepo.NewMemoryActivityLogRepository()
	}

	// Employee directory is optional
	if cfg.PostgresURI != "" {
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		sources.Employees = storeRepo.NewGormEmployeeRepository(gormDB)
		closers = append(closers, func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				sqlDB.Close()
			}
		})
	}

	// Set up services
	resolver := timewindow.NewResolver(cfg.ReportTimezone)
	merger := usecase.NewMerger(usecase.MergerConfig{
		MaxRecordsPerSource: cfg.MaxRecordsPerSource,
		Concurrency:         cfg.MergeConcurrency,
		PageSize:            cfg.FetchPageSize,
	}, log.With("component", "merger"), m)

	reportService := usecase.NewReportService(sources, merger, resolver, usecase.ReportConfig{
		Segments: analytics.SegmentConfig{
			VIPMinBookings:      cfg.VIPMinBookings,
			VIPMinSpend:         cfg.VIPMinSpend,
			ActiveRecencyMonths: cfg.ActiveRecencyMonths,
		},
		TopN:       cfg.TopN,
		PageSize:   cfg.FetchPageSize,
		MaxRecords: cfg.MaxRecordsPerSource,
	}, log.With("component", "reports"), m)

	logService := usecase.NewLogService(sources.Logs, sources.Employees, resolver, usecase.LogServiceConfig{
		MaxLimit: cfg.LogQueryMaxLimit,
		ScanCap:  cfg.LogStatsScanCap,
		PageSize: cfg.FetchPageSize,
		TopN:     cfg.TopN,
	}, log.With("component", "logs"), m)

	handler := rest.NewHandler(reportService, logService, log.With("component", "http"))
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// API_RATE_LIMIT=0 disables throttling
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rest.NewRouter(handler, metricsHandler, limiter, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	if err := shutdown(server, cancel, 10*time.Second); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	for _, closeFn := range closers {
		closeFn()
	}

	log.Info("Agency Report Service stopped")
}

// shutdown cancels in-flight report scans, then waits for their requests to finish
func shutdown(server *http.Server, cancelScans context.CancelFunc, timeout time.Duration) error {
	cancelScans()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(ctx)
}
