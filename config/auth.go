package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the single sign-on mode for platform operators.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for operator authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration for operator sign-on.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"ongeza"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"ongeza"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/sso/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev operator identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-operator"`
	Email  string   `env:"EMAIL"   envDefault:"operator@example.com"`
	Groups []string `env:"GROUPS"  envDefault:"platform-operators"   envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which operator sign-on provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// OperatorGroup is the IdP group that maps to the platform admin role.
	// Members of any other group are refused operator sign-on.
	OperatorGroup string `env:"OPERATOR_GROUP" envDefault:"platform-operators"`

	// OperatorPermissions are granted to every operator signed on through SSO.
	OperatorPermissions []string `env:"OPERATOR_PERMISSIONS" envSeparator:";" envDefault:"users:view;roles:view;permissions:manage;onboarding:review;reports:view;approvals:create"`

	// LoginRateLimit caps credential login attempts per second per client.
	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT" envDefault:"2"`

	// LoginRateBurst is the burst allowance for credential login attempts.
	LoginRateBurst int `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	a.OperatorGroup = strings.TrimSpace(a.OperatorGroup)
	if a.LoginRateLimit <= 0 {
		a.LoginRateLimit = 2
	}
	if a.LoginRateBurst < 1 {
		a.LoginRateBurst = 1
	}
}
