package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/domain/nav"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// NavigationServiceOptions groups dependencies for NavigationService.
type NavigationServiceOptions struct {
	Ephemeral ports.EphemeralStore
	Logger    *slog.Logger
}

// NavigationService builds the sidebar payload for a session: the
// composed menu tree plus any reminder badges not yet dismissed.
type NavigationService struct {
	ephemeral ports.EphemeralStore
	logger    *slog.Logger
}

// NewNavigationService constructs a new NavigationService.
func NewNavigationService(opts NavigationServiceOptions) *NavigationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NavigationService{ephemeral: opts.Ephemeral, logger: logger}
}

// ShellNavigation is the complete shell payload for one render.
type ShellNavigation struct {
	Menu   []nav.MenuItem `json:"menu"`
	Badges []ports.Badge  `json:"badges,omitempty"`
}

// MenuFor composes the menu tree for a session's user.
func (s *NavigationService) MenuFor(sess domainauth.Session) []nav.MenuItem {
	return nav.Compose(sess.User.Role, sess.User.PermissionSet(), sess.User.IsSolo)
}

// ShellFor composes the menu tree and resolves which reminder badges are
// still live for the session.
func (s *NavigationService) ShellFor(ctx context.Context, sess domainauth.Session) (*ShellNavigation, error) {
	badges, err := s.badgesFor(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &ShellNavigation{Menu: s.MenuFor(sess), Badges: badges}, nil
}

// DismissBadge suppresses a badge for the rest of the session.
func (s *NavigationService) DismissBadge(ctx context.Context, sessionID string, badge ports.Badge) error {
	if err := s.ephemeral.DismissBadge(ctx, sessionID, badge); err != nil {
		return fmt.Errorf("dismiss badge: %w", err)
	}
	return nil
}

// badgesFor returns badges whose underlying condition holds and which the
// user has not dismissed this session. Operators never see nudges.
func (s *NavigationService) badgesFor(ctx context.Context, sess domainauth.Session) ([]ports.Badge, error) {
	if sess.IsPlatformAdmin() {
		return nil, nil
	}

	var candidates []ports.Badge
	if !sess.User.PINSet {
		candidates = append(candidates, ports.BadgePINSetup)
	}
	if sess.User.TwoFASetupRequired {
		candidates = append(candidates, ports.BadgeTwoFASetup)
	}

	var live []ports.Badge
	for _, badge := range candidates {
		dismissed, err := s.ephemeral.BadgeDismissed(ctx, sess.ID, badge)
		if err != nil {
			return nil, fmt.Errorf("check badge %s: %w", badge, err)
		}
		if !dismissed {
			live = append(live, badge)
		}
	}
	return live, nil
}
