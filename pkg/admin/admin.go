// Package admin implements the authorization layer of an admin CRUD surface:
// the admin resource tree, schema-driven field-permission resolution, the
// authorization-aware CRUD hooks, and the permission option tree fed to the
// management UI. Policy decisions are delegated to an external engine through
// the Enforcer interface.
package admin

import (
	"sync"
)

// System user identities. The guest identity is used whenever a request
// carries no resolved subject; the root identity bypasses option filtering.
const (
	UserRoot  = "root"
	UserGuest = "guest"
)

// NodeKind identifies the behavior of an admin tree node.
type NodeKind int

const (
	// KindPage is a plain page admin without CRUD actions.
	KindPage NodeKind = iota

	// KindGroup is a grouping node holding sub-pages.
	KindGroup

	// KindModel is a model admin exposing CRUD over one schema.
	KindModel

	// KindForm is a form admin exposing a single submit operation.
	KindForm
)

func (k NodeKind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindGroup:
		return "group"
	case KindModel:
		return "model"
	case KindForm:
		return "form"
	default:
		return "unknown"
	}
}

// capability describes what a node kind supports in the permission tree.
type capability struct {
	hasChildren  bool
	defaultVerbs []string
}

var capabilities = map[NodeKind]capability{
	KindPage:  {},
	KindGroup: {hasChildren: true},
	KindModel: {defaultVerbs: []string{"list"}},
	KindForm:  {defaultVerbs: []string{"submit"}},
}

// Action is a registered custom admin action.
type Action struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// PageSchema is the display metadata of a visitable node. Nodes without a
// page schema are invisible to the permission tree.
type PageSchema struct {
	Label string `json:"label"`
	Sort  int    `json:"sort"`
}

// Admin is one node of the admin resource tree.
type Admin struct {
	// UniqueID identifies the node in the policy store.
	UniqueID string

	// Kind selects the node behavior.
	Kind NodeKind

	// PageSchema is nil for non-visitable nodes.
	PageSchema *PageSchema

	// Actions are the registered custom admin actions.
	Actions []Action

	parent   *Admin
	children []*Admin
}

// NewAdmin creates a detached admin node.
func NewAdmin(uniqueID string, kind NodeKind, schema *PageSchema) *Admin {
	return &Admin{UniqueID: uniqueID, Kind: kind, PageSchema: schema}
}

// AddChild attaches child to the node and returns the child for chaining.
func (a *Admin) AddChild(child *Admin) *Admin {
	child.parent = a
	a.children = append(a.children, child)
	return child
}

// Children returns the direct children of the node.
func (a *Admin) Children() []*Admin {
	return a.children
}

// Parent returns the parent node, nil for the root.
func (a *Admin) Parent() *Admin {
	return a.parent
}

// Enforcer is the policy engine surface the admin layer consumes.
// *casbin.Service satisfies it.
type Enforcer interface {
	// Enforce checks whether subject may act on obj; act1 is the narrow
	// action key, act2 the page-level fallback.
	Enforce(sub, obj, act1, act2 string) (bool, error)

	// SubjectPermissions lists the subject's encoded permission strings,
	// including role-inherited ones when implicit is set.
	SubjectPermissions(subject string, implicit bool) ([]string, error)
}

// GroupingReplacer replaces the resource hierarchy stored in the policy
// engine.
type GroupingReplacer interface {
	ReplaceGrouping(pairs [][]string) error
}

// Site is the root of an admin hierarchy. It owns the process-wide option
// tree cache and the engine handle shared by all its admins.
type Site struct {
	root     *Admin
	enforcer Enforcer

	mu      sync.Mutex
	options map[*Admin][]*PermissionOption
}

// NewSite creates a site over the given root group.
func NewSite(root *Admin, enforcer Enforcer) *Site {
	return &Site{
		root:     root,
		enforcer: enforcer,
		options:  make(map[*Admin][]*PermissionOption),
	}
}

// Root returns the root group of the site.
func (s *Site) Root() *Admin {
	return s.root
}

// Enforcer returns the policy engine handle.
func (s *Site) Enforcer() Enforcer {
	return s.enforcer
}
