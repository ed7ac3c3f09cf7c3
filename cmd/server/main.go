package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracker/internal/config"
	"tracker/internal/graphql"
	"tracker/internal/grpcapi"
	"tracker/internal/handlers"
	"tracker/internal/repository"
	"tracker/internal/services"
	"tracker/internal/session"
	"tracker/internal/soap"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func Run(ctx context.Context) error {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Setup Logger
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 3. Initialize Database
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 4. Run Migrations
	if err := repository.Migrate(db, cfg.DatabaseURL, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// 5. Session Store
	store, closeStore, err := newSessionStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer closeStore()
	registry := session.NewRegistry(store, cfg.SessionTTL, logger)

	// 6. Initialize Services
	svc := services.New(db, logger)
	rateLimiter := services.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, logger)

	// 7. Initialize Transports
	gqlHandler, err := graphql.NewHandler(svc, registry, logger)
	if err != nil {
		return fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	soapHandler := soap.NewHandler(svc, registry, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.NewHandler(cfg, logger, registry, svc)
	r := h.SetupRouter(rateLimiter, gqlHandler.Mount, soapHandler.Mount)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcServer *grpc.Server
	var grpcListener net.Listener
	if cfg.GRPCPort != "" {
		grpcListener, err = net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC: %w", err)
		}
		grpcServer = grpcapi.NewServer(svc, registry, logger)
	}

	// Background Context for workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// 8. Start Background Workers
	auditDone := make(chan struct{})
	go func() {
		svc.Audit.Start(workerCtx)
		close(auditDone)
	}()
	registry.StartCleanup(workerCtx, cfg.SessionCleanupInterval)
	rateLimiter.StartCleanup(workerCtx, 10*time.Minute)

	// 9. Start Servers with Graceful Shutdown
	serverErr := make(chan error, 2)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	if grpcServer != nil {
		go func() {
			logger.Info("Starting gRPC server", "port", cfg.GRPCPort)
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serverErr <- err
			}
		}()
	}

	// Wait for context cancellation or server error
	var runErr error
	select {
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if grpcServer != nil {
		stopGRPC(shutdownCtx, grpcServer)
	}

	workerCancel()
	select {
	case <-auditDone:
	case <-shutdownCtx.Done():
		logger.Warn("Audit worker did not drain in time")
	}

	logger.Info("Server exiting")
	return runErr
}

// stopGRPC waits for in-flight calls until ctx expires, then cuts them off.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
	}
}

// newSessionStore picks the session backend named by SESSION_BACKEND. The
// returned func releases its connections.
func newSessionStore(cfg config.Config, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case "memory":
		logger.Info("Using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil

	case "redis":
		rdb, err := repository.InitRedis(cfg.RedisURL, cfg.RedisPassword, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Using Redis session store", "addr", cfg.RedisURL)
		return session.NewRedisStore(rdb, ""), func() { rdb.Close() }, nil

	case "", "sqlite", "database":
		db, err := repository.InitDB(cfg.SessionDatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := session.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using database session store")
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return store, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
