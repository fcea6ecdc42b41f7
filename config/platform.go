package config

import (
	"strings"
	"time"
)

// PlatformConfig contains configuration for the upstream platform API
// that owns accounts, credentials, PINs, and notifications.
type PlatformConfig struct {
	// BaseURL is the root of the platform REST API.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:9000"`

	// Timeout bounds each outbound platform request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// BreakerName names the circuit breaker in logs and metrics.
	BreakerName string `env:"BREAKER_NAME" envDefault:"platform-api"`
}

// Sanitize applies guardrails to platform API configuration values.
func (p *PlatformConfig) Sanitize() {
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.Timeout < time.Second {
		p.Timeout = 10 * time.Second
	}
	if p.BreakerName == "" {
		p.BreakerName = "platform-api"
	}
}
