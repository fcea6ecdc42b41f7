package access

// Package access implements the route access controller: given the
// current user (or none) and the path being navigated to, it decides
// whether to render the page or where to redirect. Every input maps to
// exactly one decision; there is no error state.

import (
	"strings"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
)

// Well-known application paths referenced by the decision table.
const (
	PathRoot             = "/"
	PathLogin            = "/login"
	PathDashboard        = "/dashboard"
	PathSaverOnboarding  = "/complete-onboarding"
	PathOnboardingStatus = "/onboarding-status"
	PathVerifyPIN        = "/verify-pin"
	PathSetupPIN         = "/setup-pin"
)

// publicPaths are rendered for anonymous visitors and never shown to an
// authenticated session, regardless of onboarding state.
var publicPaths = map[string]struct{}{
	PathLogin:          {},
	"/register":        {},
	"/forgot-password": {},
	"/forgot-pin":      {},
	"/two-factor":      {},
}

// RouteClass classifies a path for gating purposes. A route is either
// public or protected, never both; the PIN verification route is exempt
// from all gating because it is reached mid-recovery.
type RouteClass int

const (
	RouteProtected RouteClass = iota
	RoutePublic
	RouteExempt
	RouteRoot
)

// Classify returns the gating class for a path.
func Classify(path string) RouteClass {
	path = normalize(path)
	switch {
	case path == PathVerifyPIN:
		return RouteExempt
	case path == PathRoot:
		return RouteRoot
	default:
		if _, ok := publicPaths[path]; ok {
			return RoutePublic
		}
		return RouteProtected
	}
}

// Decision is the outcome of evaluating a navigation. The set is closed:
// render, or one of four redirect targets.
type Decision int

const (
	Render Decision = iota
	RedirectLogin
	RedirectOnboarding
	RedirectStatus
	RedirectDashboard
)

// String returns a stable name for logging and metrics.
func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectOnboarding:
		return "redirect_onboarding"
	case RedirectStatus:
		return "redirect_status"
	case RedirectDashboard:
		return "redirect_dashboard"
	}
	return "unknown"
}

// Target returns the redirect path for a decision, or "" for Render.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return PathLogin
	case RedirectOnboarding:
		return PathSaverOnboarding
	case RedirectStatus:
		return PathOnboardingStatus
	case RedirectDashboard:
		return PathDashboard
	case Render:
		return ""
	}
	return ""
}

// Decide evaluates the gating rules for a navigation. user is nil for an
// anonymous session. The caller must have validated the user's onboarding
// status at the session decode boundary; Decide assumes a member of the
// closed enumeration.
//
// Protected-route rules, in fixed priority order:
//  1. anonymous            -> login
//  2. status ONBOARDING    -> status page (role-agnostic, beats rule 3)
//  3. Saver NOT_ONBOARDED  -> saver onboarding page
//  4. ONBOARDED visiting an onboarding page -> dashboard
//  5. render
//
// Public routes render only for anonymous visitors; an authenticated
// session is sent to the dashboard. The root path is a dispatcher:
// landing page when anonymous, dashboard otherwise. The PIN verification
// route renders unconditionally.
func Decide(user *domainauth.AuthenticatedUser, path string) Decision {
	path = normalize(path)

	switch Classify(path) {
	case RouteExempt:
		return Render
	case RouteRoot:
		if user == nil {
			return Render
		}
		return RedirectDashboard
	case RoutePublic:
		if user == nil {
			return Render
		}
		return RedirectDashboard
	case RouteProtected:
		return decideProtected(user, path)
	}
	// Classify is exhaustive; unreachable.
	return RedirectLogin
}

func decideProtected(user *domainauth.AuthenticatedUser, path string) Decision {
	if user == nil {
		return RedirectLogin
	}
	if user.OnboardingStatus == domainauth.OnboardingInReview && path != PathOnboardingStatus {
		return RedirectStatus
	}
	if user.Role == domainauth.RoleSaver &&
		user.OnboardingStatus == domainauth.OnboardingNotStarted &&
		path != PathSaverOnboarding {
		return RedirectOnboarding
	}
	if user.OnboardingStatus == domainauth.OnboardingComplete &&
		(path == PathSaverOnboarding || path == PathOnboardingStatus) {
		return RedirectDashboard
	}
	return Render
}

// normalize strips a trailing slash so "/dashboard/" and "/dashboard"
// gate identically. The root path is preserved.
func normalize(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = PathRoot
	}
	return path
}
