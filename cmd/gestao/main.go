package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/config"
	"github.com/grupo7/gestao-clientes-go/internal/handler"
	"github.com/grupo7/gestao-clientes-go/internal/infra/kv"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
	"github.com/grupo7/gestao-clientes-go/internal/infra/resilience"
	"github.com/grupo7/gestao-clientes-go/internal/service"
	"github.com/grupo7/gestao-clientes-go/internal/store"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("flow_ttl", cfg.FlowTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "gestao-clientes")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage backend ---
	substrate, cleanup, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer cleanup()

	// --- Stores ---
	acc := store.NewAccessor(substrate, metrics, logger)
	creds := store.NewCredentials(acc, logger)
	userData := store.NewUserData(acc, logger)
	roster := store.NewRoster(acc, logger)
	sessions := store.NewSessions(cfg.SessionTTL)

	// --- Services ---
	authSvc := service.NewAuthService(creds, userData, sessions, metrics, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	onboardingSvc := service.NewOnboardingService(userData, metrics, cfg.FlowTTL, logger)
	onboardingSvc.OnComplete(func(ctx context.Context, userID string) {
		logger.Info("onboarding flow finished", zap.String("user_id", userID))
	})
	clientsSvc := service.NewClientsService(userData, roster, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:       authSvc,
		Onboarding: onboardingSvc,
		Clients:    clientsSvc,
	}, substrate, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openStorage builds the configured key-value backend. Durable backends get
// the resilient wrapper; the in-memory one does not need it.
func openStorage(cfg *config.Config, logger *zap.Logger) (kv.Store, func(), error) {
	noop := func() {}

	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	switch cfg.StorageBackend {
	case "memory":
		logger.Info("using in-memory storage (data lost on restart)")
		return kv.NewMemory(), noop, nil

	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, noop, err
		}
		db, err := kv.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("using sqlite storage", zap.String("path", cfg.SQLitePath))
		cb := resilience.NewCircuitBreaker("storage-sqlite")
		return kv.NewResilient(db, cb, resilienceCfg), func() { db.Close() }, nil

	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.StorageFile), 0o755); err != nil {
			return nil, noop, err
		}
		f, err := kv.NewFile(cfg.StorageFile)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("using file storage", zap.String("path", cfg.StorageFile))
		cb := resilience.NewCircuitBreaker("storage-file")
		return kv.NewResilient(f, cb, resilienceCfg), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
