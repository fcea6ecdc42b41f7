package authroles

import (
	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups by simple string membership rules.
// SSO is reserved for platform operators; any identity without the
// operator group is denied rather than mapped to a lesser role.
type StaticRoleMapper struct {
	OperatorGroup string
}

func (m StaticRoleMapper) Map(groups []string) (domainauth.Role, bool) {
	for _, g := range groups {
		if m.OperatorGroup != "" && g == m.OperatorGroup {
			return domainauth.RolePlatformAdmin, true
		}
	}
	return "", false
}
