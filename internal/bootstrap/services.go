package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pesaflow/ongeza-ui-api/config"
	"github.com/pesaflow/ongeza-ui-api/internal/adapters/authroles"
	"github.com/pesaflow/ongeza-ui-api/internal/adapters/platform"
	redisadapter "github.com/pesaflow/ongeza-ui-api/internal/adapters/redis"
	"github.com/pesaflow/ongeza-ui-api/internal/data"
	"github.com/pesaflow/ongeza-ui-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Navigation    *service.NavigationService
	Notifications *service.NotificationService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *pgxpool.Pool
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires stores, the platform client, and the services.
func BuildServices(deps ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	platformClient, err := platform.NewClient(platform.Config{
		BaseURL:     cfg.Platform.BaseURL,
		Timeout:     cfg.Platform.Timeout,
		BreakerName: cfg.Platform.BreakerName,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build platform client: %w", err)
	}

	sessions := redisadapter.NewSessionStore(deps.RedisClient)
	ephemeral := redisadapter.NewEphemeralStoreWithTTL(deps.RedisClient, cfg.Redis.EphemeralTTL)
	notifCache := redisadapter.NewNotificationCache(deps.RedisClient, cfg.Notifications.CacheTTL)
	audit := data.NewAuditRepo(deps.DB)

	notifications, err := service.NewNotificationService(service.NotificationServiceOptions{
		Platform:        platformClient,
		Cache:           notifCache,
		Logger:          logger,
		Interval:        cfg.Notifications.Interval,
		UnreadCountExpr: cfg.Notifications.UnreadCountExpr,
		LatestIDExpr:    cfg.Notifications.LatestIDExpr,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build notification service: %w", err)
	}

	provider, err := BuildAuthProvider(cfg.Auth, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	auth := service.NewAuthService(service.AuthServiceOptions{
		Platform:            platformClient,
		Sessions:            sessions,
		Ephemeral:           ephemeral,
		Provider:            provider,
		Roles:               authroles.StaticRoleMapper{OperatorGroup: cfg.Auth.OperatorGroup},
		Audit:               audit,
		Tracker:             notifications,
		Logger:              logger,
		SessionTTL:          cfg.HTTP.SessionTTL,
		RecoveryWindow:      cfg.HTTP.SessionRecoveryWindow,
		OperatorPermissions: cfg.Auth.OperatorPermissions,
	})

	navigation := service.NewNavigationService(service.NavigationServiceOptions{
		Ephemeral: ephemeral,
		Logger:    logger,
	})

	return ServiceContainer{
		Auth:          auth,
		Navigation:    navigation,
		Notifications: notifications,
	}, nil
}
