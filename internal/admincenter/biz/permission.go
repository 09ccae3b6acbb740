package biz

import (
	"strings"

	"github.com/kart-io/admin-guard/pkg/admin"
	"github.com/kart-io/admin-guard/pkg/permission"
	"github.com/kart-io/admin-guard/pkg/security/authz/casbin"
)

// PermissionService composes the policy engine with the admin resource
// tree: it serves the permission tree to the management UI and applies
// role and permission grants.
type PermissionService struct {
	enforcer *casbin.Service
	site     *admin.Site
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(enforcer *casbin.Service, site *admin.Site) *PermissionService {
	return &PermissionService{enforcer: enforcer, site: site}
}

// Options returns the permission option tree visible to the subject.
func (s *PermissionService) Options(subject string) ([]*admin.PermissionOption, error) {
	return s.site.OptionsForSubject(subject)
}

// SubjectPermissions lists the encoded permissions the subject holds,
// role-inherited ones included.
func (s *PermissionService) SubjectPermissions(subject string) ([]string, error) {
	return s.enforcer.SubjectPermissions(casbin.Subject(subject), true)
}

// SubjectRoles lists the role keys granted to the subject, without the
// role prefix.
func (s *PermissionService) SubjectRoles(subject string) ([]string, error) {
	roles, err := s.enforcer.SubjectRoles(casbin.Subject(subject))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(roles))
	for _, role := range roles {
		keys = append(keys, strings.TrimPrefix(role, permission.RolePrefix))
	}
	return keys, nil
}

// UpdateSubjectRoles replaces the subject's roles with the given
// comma-separated role keys.
func (s *PermissionService) UpdateSubjectRoles(subject, roleKeys string) error {
	return s.enforcer.ReplaceSubjectRoles(casbin.Subject(subject), roleKeys)
}

// UpdateSubjectPermissions replaces the subject's direct permissions.
func (s *PermissionService) UpdateSubjectPermissions(subject string, permissions []string) ([]string, error) {
	return s.enforcer.ReplaceSubjectPermissions(casbin.Subject(subject), permissions)
}

// UpdateRolePermissions replaces a role's direct permissions.
func (s *PermissionService) UpdateRolePermissions(roleKey string, permissions []string) ([]string, error) {
	return s.enforcer.ReplaceSubjectPermissions(casbin.RoleSubject(roleKey), permissions)
}

// RefreshGrouping pushes the current admin tree hierarchy into the policy
// store. Called on startup and whenever the tree changes.
func (s *PermissionService) RefreshGrouping() error {
	return s.site.UpdateGrouping(s.enforcer)
}
