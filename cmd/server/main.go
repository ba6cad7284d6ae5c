package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvaleed/registry/internal/audit"
	"github.com/mvaleed/registry/internal/auth"
	"github.com/mvaleed/registry/internal/config"
	"github.com/mvaleed/registry/internal/event"
	"github.com/mvaleed/registry/internal/service"
	"github.com/mvaleed/registry/internal/storage/postgres"
	grpcTransport "github.com/mvaleed/registry/internal/transport/grpc"
	httpTransport "github.com/mvaleed/registry/internal/transport/http"

	"google.golang.org/grpc"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Run the application
	if err := run(cfg, logger); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("connecting to database")
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("database connected")

	repos := db.Repositories()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:       cfg.JWTSecretKey,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		Issuer:          "registry",
		Audience:        []string{"registry"},
	})

	// Initialize event publisher
	var publisher event.Publisher = event.NewLoggingPublisher(logger)
	defer publisher.Close()

	componentService := service.NewComponentService(repos.Components, repos.Contracts, db, publisher)
	contractService := service.NewContractService(repos.Contracts, repos.Components, publisher)
	environmentService := service.NewEnvironmentService(repos.Environments, publisher)
	userService := service.NewUserService(repos.Users, publisher)
	authService := service.NewAuthService(repos.Users, repos.Tokens, jwtManager, publisher)

	recorder := audit.NewRecorder(cfg.AuditCapacity)

	errChan := make(chan error, 2)

	httpServer := httpTransport.NewServer(
		cfg,
		componentService,
		contractService,
		environmentService,
		userService,
		authService,
		recorder,
		logger,
	)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logger.Info("starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	grpcServer := grpcTransport.NewServer(logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.GRPCPort)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen: %w", err)
			return
		}
		logger.Info("starting gRPC server", "addr", addr)
		if err := grpcServer.Serve(listener); err != nil && err != grpc.ErrServerStopped {
			errChan <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	// Token cleanup routine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := authService.CleanupExpiredTokens(ctx); err != nil {
					logger.Error("token cleanup failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	cancel()

	logger.Info("shutdown complete")
	return nil
}
