package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/pesaflow/ongeza-ui-api/config"
	"github.com/pesaflow/ongeza-ui-api/internal/adapters/devauth"
	"github.com/pesaflow/ongeza-ui-api/internal/adapters/oidc"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// BuildAuthProvider creates the operator SSO provider for the configured
// auth mode. A nil provider (with nil error) means SSO is not configured;
// member credential login keeps working without it.
//
//nolint:ireturn // The auth service takes the provider port, not a concrete type.
func BuildAuthProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		provider, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.DevAuth.UserID,
			Email:  cfg.DevAuth.Email,
			Groups: cfg.DevAuth.Groups,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		logger.Warn("using mock operator sign-on", "user", cfg.DevAuth.Email)
		return provider, nil

	case config.AuthModeOAuth:
		if cfg.OAuth.DiscoveryURL == "" {
			logger.Warn("operator sign-on disabled: OAUTH_DISCOVERY_URL not set")
			return nil, nil
		}
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Scope:        cfg.OAuth.Scope,
			DiscoveryURL: cfg.OAuth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build OIDC provider: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
