package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"time"
)

// Role represents a platform role. Valid values are defined as constants
// below; the set is closed and mirrors the backend's role enumeration.
type Role string

const (
	RoleSaver         Role = "SAVER"
	RoleBorrower      Role = "BORROWER"
	RoleGroupAdmin    Role = "GROUP_ADMIN"
	RoleInvestor      Role = "INVESTOR"
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
)

// ParseRole validates a backend-supplied role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSaver, RoleBorrower, RoleGroupAdmin, RoleInvestor, RolePlatformAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// OnboardingStatus is the closed enumeration driving route gating.
// Values outside the enumeration are rejected at the decode boundary;
// there is deliberately no fallthrough default anywhere downstream.
type OnboardingStatus string

const (
	OnboardingNotStarted OnboardingStatus = "NOT_ONBOARDED"
	OnboardingInReview   OnboardingStatus = "ONBOARDING"
	OnboardingComplete   OnboardingStatus = "ONBOARDED"
)

// ParseOnboardingStatus validates a backend-supplied status string.
// An unrecognized value is a hard error, never a silent allow.
func ParseOnboardingStatus(s string) (OnboardingStatus, error) {
	switch OnboardingStatus(s) {
	case OnboardingNotStarted, OnboardingInReview, OnboardingComplete:
		return OnboardingStatus(s), nil
	default:
		return "", fmt.Errorf("unknown onboarding status %q", s)
	}
}

// Valid reports whether the status is a member of the closed enumeration.
func (s OnboardingStatus) Valid() bool {
	switch s {
	case OnboardingNotStarted, OnboardingInReview, OnboardingComplete:
		return true
	}
	return false
}

// PermissionSet is a flat capability-token set. Membership test is the
// only operation; tokens are opaque to this service.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a PermissionSet from a token slice.
func NewPermissionSet(tokens []string) PermissionSet {
	set := make(PermissionSet, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the given token.
func (p PermissionSet) Has(token string) bool {
	_, ok := p[token]
	return ok
}

// HasAll reports whether the set contains every given token.
func (p PermissionSet) HasAll(tokens ...string) bool {
	for _, tok := range tokens {
		if !p.Has(tok) {
			return false
		}
	}
	return true
}

// Tokens returns the set as a slice, for serialization.
func (p PermissionSet) Tokens() []string {
	out := make([]string, 0, len(p))
	for tok := range p {
		out = append(out, tok)
	}
	return out
}

// AuthenticatedUser is the profile a session carries. It is replaced
// wholesale on login or profile refresh; the only narrow mutation allowed
// elsewhere is the TwoFASetupRequired flag flip after phone registration.
type AuthenticatedUser struct {
	ID                 string           `json:"id"`
	FirstName          string           `json:"first_name"`
	LastName           string           `json:"last_name"`
	Email              string           `json:"email"`
	Role               Role             `json:"role"`
	OnboardingStatus   OnboardingStatus `json:"onboarding_status"`
	PINSet             bool             `json:"pin_set"`
	TwoFASetupRequired bool             `json:"two_fa_setup_required"`
	IsSolo             bool             `json:"is_solo"`
	Permissions        []string         `json:"permissions"`
}

// PermissionSet returns the user's permissions as a set.
func (u AuthenticatedUser) PermissionSet() PermissionSet {
	return NewPermissionSet(u.Permissions)
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier; the token pair is the bearer
// credential material for calls to the platform backend.
//
// ExpiresAt is the access token's lifetime; RecoverableUntil is the
// record's. The record must outlive the token pair so the stored refresh
// token is still on hand to drive PIN recovery after the tokens lapse.
type Session struct {
	ID               string            `json:"id"`
	AccessToken      string            `json:"access_token"`
	RefreshToken     string            `json:"refresh_token"`
	User             AuthenticatedUser `json:"user"`
	ExpiresAt        time.Time         `json:"expires_at"`
	RecoverableUntil time.Time         `json:"recoverable_until,omitempty"`
}

// IsPlatformAdmin reports whether the session belongs to a platform operator.
func (s Session) IsPlatformAdmin() bool { return s.User.Role == RolePlatformAdmin }

// Lapsed reports whether the token pair has expired.
func (s Session) Lapsed(now time.Time) bool { return now.After(s.ExpiresAt) }

// RecoveryDeadline is the instant the record itself stops being usable.
// Sessions without a recovery window die with their tokens.
func (s Session) RecoveryDeadline() time.Time {
	if s.RecoverableUntil.After(s.ExpiresAt) {
		return s.RecoverableUntil
	}
	return s.ExpiresAt
}

// Recoverable reports whether the record can still drive PIN recovery.
func (s Session) Recoverable(now time.Time) bool { return now.Before(s.RecoveryDeadline()) }
