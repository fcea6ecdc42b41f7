package nav

// Package nav composes the sidebar menu tree for a role and permission
// set. Compose is a pure function of its inputs; ordering is positional
// (items are spliced immediately after the Dashboard entry), never sorted.

import (
	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
)

// MenuItem is one entry in the sidebar tree.
type MenuItem struct {
	Label    string     `json:"label"`
	Path     string     `json:"path"`
	Icon     string     `json:"icon,omitempty"`
	Children []MenuItem `json:"children,omitempty"`
}

// Permission tokens gating the admin menu entries.
const (
	PermViewUsers          = "VIEW_USERS"
	PermViewRoles          = "VIEW_ROLES"
	PermManagePermissions  = "MANAGE_PERMISSIONS"
	PermReviewOnboarding   = "REVIEW_ONBOARDING"
	PermViewReports        = "VIEW_REPORTS"
	PermCreateApprovalFlow = "CREATE_APPROVAL_FLOW"
)

// baseItems is the role-agnostic starting list. Role-specific composition
// strips and splices from here; the slice is copied before mutation.
func baseItems() []MenuItem {
	return []MenuItem{
		{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
		{Label: "Goals", Path: "/goals", Icon: "target"},
		{Label: "Groups", Path: "/groups", Icon: "users", Children: groupChildren(false)},
		{Label: "Messages", Path: "/messages", Icon: "mail"},
		{Label: "Profile", Path: "/profile", Icon: "user"},
	}
}

func groupChildren(solo bool) []MenuItem {
	if solo {
		// Solo savers see only their own group view and contributions.
		return []MenuItem{
			{Label: "My Groups", Path: "/groups/mine"},
			{Label: "Contributions", Path: "/groups/contributions"},
		}
	}
	return []MenuItem{
		{Label: "Overview", Path: "/groups"},
		{Label: "My Groups", Path: "/groups/mine"},
		{Label: "Contributions", Path: "/groups/contributions"},
		{Label: "Meetings", Path: "/groups/meetings"},
	}
}

func reportsItem() MenuItem {
	return MenuItem{Label: "Reports", Path: "/reports", Icon: "bar-chart", Children: []MenuItem{
		{Label: "Savings", Path: "/reports/savings"},
		{Label: "Transactions", Path: "/reports/transactions"},
	}}
}

func loansItem() MenuItem {
	return MenuItem{Label: "Loans", Path: "/loans", Icon: "credit-card", Children: []MenuItem{
		{Label: "My Loans", Path: "/loans"},
		{Label: "Apply", Path: "/loans/apply"},
		{Label: "Repayments", Path: "/loans/repayments"},
	}}
}

// Compose builds the ordered menu tree for the given role, permission
// set, and solo-saver flag.
func Compose(role domainauth.Role, perms domainauth.PermissionSet, isSolo bool) []MenuItem {
	switch role {
	case domainauth.RolePlatformAdmin:
		return composeAdmin(perms)
	case domainauth.RoleBorrower:
		return composeBorrower()
	case domainauth.RoleInvestor:
		return composeInvestor()
	case domainauth.RoleSaver, domainauth.RoleGroupAdmin:
		return composeSaver(isSolo)
	}
	// Unknown roles never reach here: sessions carry parsed roles only.
	return baseItems()
}

// composeAdmin strips saver-only items and splices permission-gated admin
// entries immediately after Dashboard.
func composeAdmin(perms domainauth.PermissionSet) []MenuItem {
	items := strip(baseItems(), "/goals", "/groups")

	var admin []MenuItem
	if perms.Has(PermViewUsers) {
		admin = append(admin, MenuItem{Label: "Users", Path: "/users/list", Icon: "users"})
	}
	if perms.HasAll(PermViewRoles, PermManagePermissions) {
		admin = append(admin, MenuItem{Label: "Roles & Permissions", Path: "/roles", Icon: "shield"})
	}
	if perms.Has(PermReviewOnboarding) {
		admin = append(admin, MenuItem{Label: "Onboarding", Path: "/onboarding/review", Icon: "clipboard"})
	}
	if perms.Has(PermCreateApprovalFlow) {
		admin = append(admin, MenuItem{Label: "Approvals", Path: "/approvals", Icon: "check-circle"})
	}
	if perms.Has(PermViewReports) {
		admin = append(admin, reportsItem())
	}

	return spliceAfterDashboard(items, admin...)
}

// composeBorrower strips saver/group items and splices Loans and Reports
// unconditionally.
func composeBorrower() []MenuItem {
	items := strip(baseItems(), "/goals", "/groups")
	return spliceAfterDashboard(items, loansItem(), reportsItem())
}

func composeInvestor() []MenuItem {
	items := strip(baseItems(), "/goals", "/groups")
	portfolio := MenuItem{Label: "Investments", Path: "/investments", Icon: "trending-up", Children: []MenuItem{
		{Label: "Portfolio", Path: "/investments"},
		{Label: "Opportunities", Path: "/investments/opportunities"},
	}}
	return spliceAfterDashboard(items, portfolio, reportsItem())
}

// composeSaver keeps the base list, narrows the Groups submenu for solo
// savers, and splices a Reports submenu.
func composeSaver(isSolo bool) []MenuItem {
	items := baseItems()
	if isSolo {
		for i := range items {
			if items[i].Path == "/groups" {
				items[i].Children = groupChildren(true)
			}
		}
	}
	return spliceAfterDashboard(items, reportsItem())
}

func strip(items []MenuItem, paths ...string) []MenuItem {
	drop := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		drop[p] = struct{}{}
	}
	out := items[:0]
	for _, item := range items {
		if _, ok := drop[item.Path]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}

func spliceAfterDashboard(items []MenuItem, extra ...MenuItem) []MenuItem {
	if len(extra) == 0 {
		return items
	}
	idx := 0
	for i, item := range items {
		if item.Path == "/dashboard" {
			idx = i + 1
			break
		}
	}
	out := make([]MenuItem, 0, len(items)+len(extra))
	out = append(out, items[:idx]...)
	out = append(out, extra...)
	out = append(out, items[idx:]...)
	return out
}
