package casbin

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/kart-io/logger"

	"github.com/kart-io/admin-guard/pkg/permission"
)

// groupingPolicyName is the named grouping relation holding the admin
// resource hierarchy.
const groupingPolicyName = "g2"

// Service wraps a Casbin enforcer with the operations the admin
// authorization layer needs. It adds no caching and no retries: enforce
// results are memoized per request by the caller, and engine failures
// propagate so callers can fail closed.
//
// The replacement operations (roles, permissions, grouping) are
// remove-then-add and not transactional against concurrent Enforce calls;
// a reader may observe the intermediate state during a replacement.
type Service struct {
	enforcer *casbin.Enforcer
	watcher  Watcher
}

// NewService creates a Service around an existing enforcer and registers the
// actionMatch matcher function the default model relies on.
func NewService(e *casbin.Enforcer) *Service {
	e.AddFunction("actionMatch", actionMatchFunc)
	return &Service{enforcer: e}
}

// Enforce checks whether subject may act on the resource identified by obj.
// act1 is the narrow action key (e.g. "page:update:salary"), act2 the
// page-level fallback (e.g. "page:update"); a grant covering either allows
// the request.
func (s *Service) Enforce(sub, obj, act1, act2 string) (bool, error) {
	return s.enforcer.Enforce(sub, obj, act1, act2)
}

// SubjectPermissions returns the subject's permission strings, re-encoded
// with the subject column dropped. With implicit set, permissions inherited
// through role membership are included.
func (s *Service) SubjectPermissions(subject string, implicit bool) ([]string, error) {
	var (
		rules [][]string
		err   error
	)
	if implicit {
		rules, err = s.enforcer.GetImplicitPermissionsForUser(subject)
	} else {
		rules, err = s.enforcer.GetPermissionsForUser(subject)
	}
	if err != nil {
		return nil, fmt.Errorf("get permissions for %s: %w", subject, err)
	}

	permissions := make([]string, 0, len(rules))
	for _, rule := range rules {
		permissions = append(permissions, permission.Encode(rule[1:]...))
	}
	return permissions, nil
}

// ReplaceSubjectRoles replaces all role memberships of subject with the
// comma-separated role keys. Empty entries are skipped; an empty list leaves
// the subject with no roles. The operation is a full replace, not
// incremental, and is idempotent for a given role set.
func (s *Service) ReplaceSubjectRoles(subject, roleKeys string) error {
	newRoles := make([][]string, 0)
	for _, role := range strings.Split(roleKeys, ",") {
		if role == "" {
			continue
		}
		newRoles = append(newRoles, []string{subject, permission.RolePrefix + role})
	}

	if _, err := s.enforcer.DeleteRolesForUser(subject); err != nil {
		return fmt.Errorf("delete roles for %s: %w", subject, err)
	}
	if len(newRoles) > 0 {
		if _, err := s.enforcer.AddGroupingPolicies(newRoles); err != nil {
			return fmt.Errorf("add roles for %s: %w", subject, err)
		}
	}
	s.notify()
	return nil
}

// ReplaceSubjectPermissions replaces the subject's direct permissions with
// the given encoded permission strings. Only the set difference is written:
// stale rules are removed, missing rules added. The input list is returned
// unchanged to confirm acceptance.
func (s *Service) ReplaceSubjectPermissions(subject string, permissions []string) ([]string, error) {
	oldRules, err := s.enforcer.GetPermissionsForUser(subject)
	if err != nil {
		return nil, fmt.Errorf("get permissions for %s: %w", subject, err)
	}

	oldSet := make(map[string][]string, len(oldRules))
	for _, rule := range oldRules {
		oldSet[ruleKey(rule)] = rule
	}

	newSet := make(map[string][]string, len(permissions))
	for _, perm := range permissions {
		rule := append([]string{subject}, permission.Decode(perm)...)
		newSet[ruleKey(rule)] = rule
	}

	removeRules := make([][]string, 0)
	for key, rule := range oldSet {
		if _, ok := newSet[key]; !ok {
			removeRules = append(removeRules, rule)
		}
	}
	addRules := make([][]string, 0)
	for key, rule := range newSet {
		if _, ok := oldSet[key]; !ok {
			addRules = append(addRules, rule)
		}
	}

	if len(removeRules) > 0 {
		if _, err := s.enforcer.RemovePolicies(removeRules); err != nil {
			return nil, fmt.Errorf("remove permissions for %s: %w", subject, err)
		}
	}
	if len(addRules) > 0 {
		if _, err := s.enforcer.AddPolicies(addRules); err != nil {
			return nil, fmt.Errorf("add permissions for %s: %w", subject, err)
		}
	}
	s.notify()
	return permissions, nil
}

// ReplaceGrouping replaces the admin resource hierarchy stored in the g2
// relation with the given (parent, child) pairs, writing only the set
// difference.
func (s *Service) ReplaceGrouping(pairs [][]string) error {
	oldRules, err := s.enforcer.GetFilteredNamedGroupingPolicy(groupingPolicyName, 0)
	if err != nil {
		return fmt.Errorf("get resource grouping: %w", err)
	}

	oldSet := make(map[string][]string, len(oldRules))
	for _, rule := range oldRules {
		oldSet[ruleKey(rule)] = rule
	}
	newSet := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		newSet[ruleKey(pair)] = pair
	}

	removeRules := make([][]string, 0)
	for key, rule := range oldSet {
		if _, ok := newSet[key]; !ok {
			removeRules = append(removeRules, rule)
		}
	}
	addRules := make([][]string, 0)
	for key, rule := range newSet {
		if _, ok := oldSet[key]; !ok {
			addRules = append(addRules, rule)
		}
	}

	if len(removeRules) > 0 {
		if _, err := s.enforcer.RemoveNamedGroupingPolicies(groupingPolicyName, removeRules); err != nil {
			return fmt.Errorf("remove resource grouping: %w", err)
		}
	}
	if len(addRules) > 0 {
		if _, err := s.enforcer.AddNamedGroupingPolicies(groupingPolicyName, addRules); err != nil {
			return fmt.Errorf("add resource grouping: %w", err)
		}
	}
	s.notify()
	return nil
}

// SubjectRoles returns the role keys directly assigned to the subject.
func (s *Service) SubjectRoles(subject string) ([]string, error) {
	return s.enforcer.GetRolesForUser(subject)
}

// LoadPolicy reloads policies from storage.
func (s *Service) LoadPolicy() error {
	return s.enforcer.LoadPolicy()
}

// Enforcer returns the underlying Casbin enforcer (use with caution).
func (s *Service) Enforcer() *casbin.Enforcer {
	return s.enforcer
}

// SetWatcher sets the watcher for distributed policy synchronization.
// Updates published by other instances trigger a policy reload.
func (s *Service) SetWatcher(w Watcher) {
	s.watcher = w
	w.SetUpdateCallback(func(string) {
		if err := s.enforcer.LoadPolicy(); err != nil {
			logger.Errorw("Failed to reload policies on watcher update", "error", err.Error())
		}
	})
}

// notify publishes a policy update after a successful local mutation.
func (s *Service) notify() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Update(); err != nil {
		logger.Warnw("Failed to publish policy update", "error", err.Error())
	}
}

// ruleKey joins a rule into a comparable key for set diffing.
func ruleKey(rule []string) string {
	return strings.Join(rule, "#")
}

// Subject returns the policy subject key for a user identity.
func Subject(name string) string {
	return permission.SubjectPrefix + name
}

// RoleSubject returns the policy subject key for a role.
func RoleSubject(key string) string {
	return permission.RolePrefix + key
}
