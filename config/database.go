package config

import (
	"fmt"
	"time"
)

// DBConfig contains PostgreSQL database configuration for the audit trail.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"ongeza"`
	Password string `env:"PASSWORD" envDefault:"ongeza"`
	Name     string `env:"NAME"     envDefault:"ongeza"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production

	// RunMigrationsOnStart applies embedded schema migrations at boot.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// DSN returns the connection string for pgx.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// RedisConfig contains Redis configuration for the session and
// ephemeral stores and the notification cache.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// EphemeralTTL bounds per-session scratch state (redirect hints,
	// dismissed badges) that outlives a page load but not the session.
	EphemeralTTL time.Duration `env:"EPHEMERAL_TTL" envDefault:"12h"`
}
