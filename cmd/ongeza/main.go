package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pesaflow/ongeza-ui-api/config"
	"github.com/pesaflow/ongeza-ui-api/internal/bootstrap"
	"github.com/pesaflow/ongeza-ui-api/internal/migrate"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	cfgPtr := &cfg

	logStartupInfo(ctx, logger, cfgPtr)

	if err = bootstrap.ValidateServiceConfig(cfgPtr); err != nil {
		return err
	}

	db, err := bootstrap.ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close()

	if cfg.Postgres.RunMigrationsOnStart {
		if err = migrate.Run(ctx, db); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	redisClient, err := bootstrap.ConnectRedis(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	services, err := bootstrap.BuildServices(bootstrap.ServiceDeps{
		Config:      cfgPtr,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return runServices(ctx, cfgPtr, services, logger)
}

// runServices starts the enabled services and blocks until a shutdown
// signal or a service failure.
func runServices(
	ctx context.Context,
	cfg *config.AppConfig,
	services bootstrap.ServiceContainer,
	logger *slog.Logger,
) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(signalCtx)

	if cfg.IsNotifierEnabled() {
		group.Go(func() error {
			if err := services.Notifications.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("notification poller: %w", err)
			}
			return nil
		})
	}

	if cfg.IsHTTPServerEnabled() {
		srv := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
			Config:   cfg,
			Services: services,
			Logger:   logger,
		})
		group.Go(func() error {
			<-groupCtx.Done()
			bootstrap.ShutdownServer(srv, cfg.HTTP.ShutdownTimeout, logger)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	logger.InfoContext(ctx, "shutdown complete")
	return nil
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting ongeza ui api",
		"db_host", cfg.Postgres.Host,
		"db_name", cfg.Postgres.Name,
		"platform_url", cfg.Platform.BaseURL,
		"enabled_services", bootstrap.EnabledServiceNames(cfg))
}
