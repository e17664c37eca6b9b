package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knowledge-hub/internal/auth"
	"knowledge-hub/internal/config"
	"knowledge-hub/internal/database"
	"knowledge-hub/internal/logging"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/router"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default: ./config.yaml if present)")
	seedAdmin := flag.Bool("seed-admin", false, "create or reset the admin account from seed.* config and exit")
	flag.Parse()

	if err := run(*configPath, *seedAdmin); err != nil {
		slog.Error("fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run(configPath string, seedOnly bool) error {
	// load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if seedOnly {
		admin, err := auth.SeedAdmin(ctx, repository.NewUserRepository(db),
			auth.NewHasher(cfg.Auth.BcryptCost), cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		logger.Info("admin account ready", "operation", "seed_admin", "outcome", "success", "email", admin.Email)
		return nil
	}

	purged, err := auth.NewSessionService(repository.NewSessionRepository(db), cfg.Auth.SessionTTL).PurgeExpired(ctx)
	if err != nil {
		logger.Warn("expired session purge failed", "operation", "purge_sessions", "outcome", "failure", "error", err.Error())
	} else if purged > 0 {
		logger.Info("expired sessions purged", "operation", "purge_sessions", "outcome", "success", "count", purged)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// setup router
	r, err := router.SetupRouter(cfg, db, logger, reg)
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "environment", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("run server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
