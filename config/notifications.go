package config

import (
	"strings"
	"time"
)

// NotificationsConfig controls the background notification poller.
//
// The platform owns the notification payload shape; the poller extracts
// what the UI needs with JMESPath expressions so a payload change is a
// config change, not a deploy.
type NotificationsConfig struct {
	// Interval is the poll cadence per signed-in user.
	Interval time.Duration `env:"NOTIFICATIONS_INTERVAL" envDefault:"60s"`

	// UnreadCountExpr extracts the unread notification count.
	UnreadCountExpr string `env:"NOTIFICATIONS_UNREAD_COUNT_EXPR" envDefault:"length(items[?!read])"`

	// LatestIDExpr extracts the newest notification ID, used to detect
	// feeds that changed between polls.
	LatestIDExpr string `env:"NOTIFICATIONS_LATEST_ID_EXPR" envDefault:"items[0].id"`

	// CacheTTL bounds how long a polled snapshot stays served after the
	// poller stops refreshing it (e.g. across a backend outage).
	CacheTTL time.Duration `env:"NOTIFICATIONS_CACHE_TTL" envDefault:"5m"`
}

// Sanitize applies guardrails to notification poller configuration values.
func (n *NotificationsConfig) Sanitize() {
	if n.Interval < 10*time.Second {
		n.Interval = 60 * time.Second
	}
	if strings.TrimSpace(n.UnreadCountExpr) == "" {
		n.UnreadCountExpr = "length(items[?!read])"
	}
	if strings.TrimSpace(n.LatestIDExpr) == "" {
		n.LatestIDExpr = "items[0].id"
	}
	if n.CacheTTL < n.Interval {
		n.CacheTTL = n.Interval * 5
	}
}
