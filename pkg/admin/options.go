package admin

import (
	"fmt"
	"sort"

	"github.com/kart-io/admin-guard/pkg/permission"
)

// PermissionOption is one node of the permission tree fed to the management
// UI. Value is the encoded permission string granted by selecting the node.
type PermissionOption struct {
	Label    string              `json:"label"`
	Value    string              `json:"value"`
	Sort     int                 `json:"sort,omitempty"`
	Children []*PermissionOption `json:"children,omitempty"`
}

func (o *PermissionOption) clone() *PermissionOption {
	c := *o
	return &c
}

// verbLabels names the built-in verbs offered as child options.
var verbLabels = map[string]string{
	"list":   "View list",
	"submit": "Submit",
}

// ActionOptions returns the full permission option tree under group. The
// tree is built once per group and memoized for the site's lifetime; callers
// must not modify it. Use InvalidateOptions after the admin tree changes.
func (s *Site) ActionOptions(group *Admin) []*PermissionOption {
	s.mu.Lock()
	defer s.mu.Unlock()

	if options, ok := s.options[group]; ok {
		return options
	}
	options := buildActionOptions(group)
	s.options[group] = options
	return options
}

// InvalidateOptions drops every memoized option tree.
func (s *Site) InvalidateOptions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = make(map[*Admin][]*PermissionOption)
}

func buildActionOptions(group *Admin) []*PermissionOption {
	var options []*PermissionOption
	for _, child := range group.Children() {
		if child.PageSchema == nil {
			continue
		}

		item := &PermissionOption{
			Label: child.PageSchema.Label,
			Value: permission.Encode(child.UniqueID, permission.EncodeAdminAction("page")),
			Sort:  child.PageSchema.Sort,
		}

		caps := capabilities[child.Kind]
		if caps.hasChildren {
			item.Children = buildActionOptions(child)
		} else {
			for _, verb := range caps.defaultVerbs {
				if verb == "submit" && hasAction(child.Actions, "submit") {
					continue
				}
				item.Children = append(item.Children, &PermissionOption{
					Label: verbLabels[verb],
					Value: permission.Encode(child.UniqueID, permission.EncodeAdminAction(verb)),
				})
			}
			for _, action := range child.Actions {
				item.Children = append(item.Children, &PermissionOption{
					Label: action.Label,
					Value: permission.Encode(child.UniqueID, permission.EncodeAdminAction(action.Name)),
				})
			}
		}
		options = append(options, item)
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Sort > options[j].Sort
	})
	return options
}

func hasAction(actions []Action, name string) bool {
	for _, a := range actions {
		if a.Name == name {
			return true
		}
	}
	return false
}

// FilterOptions keeps the options accepted by allow, plus every ancestor of
// an accepted option: a node survives when it is allowed itself or any of
// its descendants survives. Surviving nodes are copies, so the memoized
// tree is never modified.
func FilterOptions(options []*PermissionOption, allow func(*PermissionOption) bool) []*PermissionOption {
	var result []*PermissionOption
	for _, option := range options {
		children := FilterOptions(option.Children, allow)
		if len(children) == 0 && !allow(option) {
			continue
		}
		kept := option.clone()
		kept.Children = children
		result = append(result, kept)
	}
	return result
}

// OptionsForSubject returns the option tree restricted to the permissions
// the subject holds, role-inherited ones included. The root identity sees
// the full tree.
func (s *Site) OptionsForSubject(subject string) ([]*PermissionOption, error) {
	options := s.ActionOptions(s.root)
	if subject == UserRoot {
		return options, nil
	}

	permissions, err := s.enforcer.SubjectPermissions(permission.SubjectPrefix+subject, true)
	if err != nil {
		return nil, fmt.Errorf("list permissions for %q: %w", subject, err)
	}
	allowed := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		allowed[p] = struct{}{}
	}

	return FilterOptions(options, func(o *PermissionOption) bool {
		_, ok := allowed[o.Value]
		return ok
	}), nil
}

// GroupingPairs returns the resource hierarchy of the site as (parent,
// child) edges, one per tree edge, in depth-first order.
func (s *Site) GroupingPairs() [][]string {
	var pairs [][]string
	var walk func(node *Admin)
	walk = func(node *Admin) {
		for _, child := range node.Children() {
			pairs = append(pairs, []string{node.UniqueID, child.UniqueID})
			walk(child)
		}
	}
	walk(s.root)
	return pairs
}

// UpdateGrouping pushes the site's resource hierarchy into the policy
// engine, replacing whatever hierarchy is stored there.
func (s *Site) UpdateGrouping(replacer GroupingReplacer) error {
	return replacer.ReplaceGrouping(s.GroupingPairs())
}

// FieldRow is one field-permission row shown in the permission form for a
// page action.
type FieldRow struct {
	Label string `json:"label"`
	Rol   string `json:"rol"`
}

func (m *ModelAdmin) schemaFieldsRows(s Schema, action string) []FieldRow {
	skip := NewFieldSet(m.excludeFor(action)...)
	rows := make([]FieldRow, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Required || skip.Has(field.Key()) {
			continue
		}
		label := field.Title
		if prefix := actionLabelPrefix[action]; prefix != "" {
			label = prefix + "-" + label
		}
		rows = append(rows, FieldRow{Label: label, Rol: action + ":" + field.Key()})
	}
	return rows
}

// ActionFieldsRows returns the field-permission rows for the page action,
// in schema order. List covers both the display and the filter schema.
func (m *ModelAdmin) ActionFieldsRows(action string) []FieldRow {
	switch action {
	case ActionList:
		rows := m.schemaFieldsRows(m.SchemaList, ActionList)
		return append(rows, m.schemaFieldsRows(m.SchemaFilter, ActionFilter)...)
	case ActionUpdate, "bulk_update":
		return m.schemaFieldsRows(m.SchemaUpdate, action)
	case ActionCreate, "bulk_create":
		return m.schemaFieldsRows(m.SchemaCreate, action)
	case ActionRead:
		return m.schemaFieldsRows(m.SchemaRead, action)
	default:
		return nil
	}
}
