// Package main is the entry point for the tokopos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"

	"tokopos/internal/core/tx"
	"tokopos/internal/domain/backoffice"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/domain/expense"
	"tokopos/internal/domain/extraction"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/reconcile"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/cache"
	v1 "tokopos/internal/infrastructure/http/v1"
	"tokopos/internal/infrastructure/http/v1/middleware"
	"tokopos/internal/infrastructure/storage/memory"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/pkg/logger"
	"tokopos/pkg/numerator"
)

// views is the full view-cache surface: cached reads for the HTTP
// layer, invalidation for the catalog and the ledger.
type views interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	InvalidateCatalog(ctx context.Context) error
	InvalidateReports(ctx context.Context) error
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting tokopos server")

	// --- Storage ---
	var (
		pool        *postgres.Pool
		txm         tx.OptimisticManager
		productRepo catalog.Repository
		saleRepo    ledger.Repository
		expenseRepo expense.Repository
		numbers     numerator.Generator
		audit       *postgres.AuditService
	)

	if getEnv("STORE", "postgres") == "memory" {
		log.Info("using in-memory store (development mode)")
		store := memory.NewStore()
		txm = memory.NewTxManager(store)
		productRepo = memory.NewProductRepo(store)
		saleRepo = memory.NewSaleRepo(store)
		expenseRepo = memory.NewExpenseRepo(store)
		numbers = numerator.NewMemory()
	} else {
		dsn := mustEnv("DATABASE_URL")
		cfg := postgres.DefaultPoolConfig(dsn)
		if maxConns := getEnvInt("DB_MAX_CONNS", 25); maxConns > 0 {
			cfg.MaxConns = int32(maxConns)
		}

		pool, err = postgres.NewPool(ctx, cfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Info("database connection established")

		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				postgres.LogPoolStats(ctx, pool.Pool)
			}
		}()

		pgTxm := postgres.NewTxManager(pool)
		txm = pgTxm
		productRepo = postgres.NewProductRepo(pgTxm)
		saleRepo = postgres.NewSaleRepo(pgTxm)
		expenseRepo = postgres.NewExpenseRepo(pgTxm)
		numbers = numerator.New(pool)

		audit, err = postgres.NewAuditService(pgTxm)
		if err != nil {
			log.Fatalw("failed to initialize audit service", "error", err)
		}
	}

	// --- View cache ---
	var viewCache views = cache.NoopViews{}
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		viewCache = cache.NewViews(client, getEnvDuration("VIEW_CACHE_TTL", 5*time.Minute))
		log.Infow("view cache enabled", "addr", redisAddr)
	}

	// --- Domain services ---
	catalogService := catalog.NewService(productRepo, viewCache)
	engine := ledger.NewEngine(saleRepo, productRepo, txm, numerator.NewTransactionNumberer(numbers), viewCache)
	expenseService := expense.NewService(expenseRepo)
	reportsService := reports.NewService(saleRepo, expenseRepo)
	reconcileJob := reconcile.NewJob(saleRepo, productRepo)

	var auditRec backoffice.AuditRecorder
	if audit != nil {
		auditRec = audit
	}
	office := backoffice.New(engine, catalogService, reconcileJob, auditRec)

	// --- Document extraction ---
	var extractor extraction.Extractor
	if apiKey := getEnv("OPENAI_API_KEY", ""); apiKey != "" {
		extractor = extraction.NewOpenAIExtractor(
			openai.NewClient(apiKey),
			getEnv("OPENAI_MODEL", ""),
		)
		log.Info("document extraction enabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		TokenValidator: middleware.NewTokenValidator(mustEnv("JWT_SECRET")),
		Catalog:        catalogService,
		Engine:         engine,
		Expenses:       expenseService,
		Reports:        reportsService,
		Office:         office,
		Extractor:      extractor,
		ViewCache:      viewCache,
		Pool:           pool,
		Audit:          audit,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
