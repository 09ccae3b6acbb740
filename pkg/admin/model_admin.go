package admin

import (
	"context"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/admin-guard/internal/pkg/httputils"
	"github.com/kart-io/admin-guard/pkg/permission"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// Built-in CRUD actions checked at field level.
const (
	ActionList   = "list"
	ActionFilter = "filter"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionRead   = "read"
)

// permissionActions are the actions carrying a permission field set.
var permissionActions = []string{ActionList, ActionFilter, ActionCreate, ActionUpdate, ActionRead}

// actionLabelPrefix localizes the field-label prefix per action.
var actionLabelPrefix = map[string]string{
	ActionList:    "List",
	ActionFilter:  "Filter",
	ActionCreate:  "Create",
	ActionUpdate:  "Update",
	ActionRead:    "Read",
	"bulk_update": "Bulk update",
	"bulk_create": "Bulk create",
	"submit":      "Submit",
}

// ItemReader loads items by id for the read endpoint.
type ItemReader interface {
	ReadItems(ctx context.Context, itemIDs []string) ([]map[string]interface{}, error)
}

// ModelAdminConfig configures a ModelAdmin.
type ModelAdminConfig struct {
	// ID is the unique resource id used in policy rules.
	ID string

	// Label and Sort feed the page schema shown in the permission tree.
	Label string
	Sort  int

	// Actions are custom admin actions beyond the built-in verbs.
	Actions []Action

	// SchemaModel is the persistence schema; the per-action schemas drive
	// field-permission resolution for the corresponding CRUD stage.
	SchemaModel  Schema
	SchemaList   Schema
	SchemaFilter Schema
	SchemaCreate Schema
	SchemaUpdate Schema
	SchemaRead   Schema

	// PermissionExclude lists fields exempt from permission checking per
	// action; the "all" key applies to every action. Excluded fields never
	// enter a permission field set and can therefore never be denied.
	PermissionExclude map[string][]string

	// Reader backs the read-by-id endpoint.
	Reader ItemReader
}

// ModelAdmin is a model admin page with field-level permission control.
// Fields not covered by a permission field set are not permission checked.
// The field sets are computed once on first access and are immutable
// afterwards.
type ModelAdmin struct {
	*Admin

	site *Site

	SchemaModel  Schema
	SchemaList   Schema
	SchemaFilter Schema
	SchemaCreate Schema
	SchemaUpdate Schema
	SchemaRead   Schema

	// PermissionExclude is immutable after construction.
	PermissionExclude map[string][]string

	// CreateExclude and UpdateExclude are dropped from incoming payloads
	// before permission filtering (auto-time fields etc.).
	CreateExclude FieldSet
	UpdateExclude FieldSet

	reader ItemReader

	permOnce   sync.Once
	permFields map[string]map[string]string
}

// NewModelAdmin creates a model admin node for the site. The returned
// admin still has to be attached to a group via AddChild.
func NewModelAdmin(site *Site, cfg ModelAdminConfig) *ModelAdmin {
	node := NewAdmin(cfg.ID, KindModel, &PageSchema{Label: cfg.Label, Sort: cfg.Sort})
	node.Actions = cfg.Actions

	exclude := cfg.PermissionExclude
	if exclude == nil {
		exclude = make(map[string][]string)
	}

	return &ModelAdmin{
		Admin:             node,
		site:              site,
		SchemaModel:       cfg.SchemaModel,
		SchemaList:        cfg.SchemaList,
		SchemaFilter:      cfg.SchemaFilter,
		SchemaCreate:      cfg.SchemaCreate,
		SchemaUpdate:      cfg.SchemaUpdate,
		SchemaRead:        cfg.SchemaRead,
		PermissionExclude: exclude,
		CreateExclude:     FieldSet{},
		UpdateExclude:     FieldSet{},
		reader:            cfg.Reader,
	}
}

// Site returns the owning site.
func (m *ModelAdmin) Site() *Site {
	return m.site
}

// RegisteredActions returns the custom admin actions of the page.
func (m *ModelAdmin) RegisteredActions() []Action {
	return m.Actions
}

func (m *ModelAdmin) schemaFor(action string) Schema {
	switch action {
	case ActionList:
		return m.SchemaList
	case ActionFilter:
		return m.SchemaFilter
	case ActionCreate:
		return m.SchemaCreate
	case ActionUpdate:
		return m.SchemaUpdate
	case ActionRead:
		return m.SchemaRead
	default:
		return Schema{}
	}
}

func (m *ModelAdmin) excludeFor(action string) []string {
	exclude := append([]string{}, m.PermissionExclude["all"]...)
	return append(exclude, m.PermissionExclude[action]...)
}

func (m *ModelAdmin) permissionFields() map[string]map[string]string {
	m.permOnce.Do(func() {
		fields := make(map[string]map[string]string, len(permissionActions))
		for _, action := range permissionActions {
			fields[action] = FieldsNameLabel(m.schemaFor(action), actionLabelPrefix[action], true, m.excludeFor(action))
		}
		m.permFields = fields
	})
	return m.permFields
}

// PermissionFields returns the {field: label} set subject to permission
// checks for the action. Unknown actions yield nil. The returned map is
// shared and must not be modified.
func (m *ModelAdmin) PermissionFields(action string) map[string]string {
	return m.permissionFields()[action]
}

// HasFieldPermission checks the field-level permission for the current
// subject: the per-field key "page:<action>:<field>" with the page-level
// fallback "page:<action>".
func (m *ModelAdmin) HasFieldPermission(rc *RequestContext, field, action string) (bool, error) {
	subject := permission.SubjectPrefix + rc.Subject()
	return m.site.Enforcer().Enforce(subject, m.UniqueID, "page:"+action+":"+field, "page:"+action)
}

// HasActionPermission checks the coarse action-level gate for the current
// subject using the normalized action key.
func (m *ModelAdmin) HasActionPermission(rc *RequestContext, action string) (bool, error) {
	key := permission.EncodeAdminAction(action)
	subject := permission.SubjectPrefix + rc.Subject()
	return m.site.Enforcer().Enforce(subject, m.UniqueID, key, key)
}

// HasReadPermission is the coarse gate for the read endpoint.
func (m *ModelAdmin) HasReadPermission(rc *RequestContext) (bool, error) {
	return m.HasActionPermission(rc, ActionRead)
}

// HasCreatePermission is the coarse gate for create.
func (m *ModelAdmin) HasCreatePermission(rc *RequestContext, _ map[string]interface{}) (bool, error) {
	return m.HasActionPermission(rc, ActionCreate)
}

// HasUpdatePermission is the coarse gate for update.
func (m *ModelAdmin) HasUpdatePermission(rc *RequestContext, _ []string, _ map[string]interface{}) (bool, error) {
	return m.HasActionPermission(rc, ActionUpdate)
}

// HasDeletePermission is the coarse gate for delete.
func (m *ModelAdmin) HasDeletePermission(rc *RequestContext, _ []string) (bool, error) {
	return m.HasActionPermission(rc, "delete")
}

// DenyFields returns the fields the current subject may not access for the
// action. The result is computed at most once per request per action; later
// calls return the cached set itself, so policy mutations mid-request are
// never observed. Unrecognized actions yield an empty set (the coarse
// action gates still apply). Engine failures propagate and nothing is
// cached, so the caller fails closed.
func (m *ModelAdmin) DenyFields(rc *RequestContext, action string) (FieldSet, error) {
	if fields, ok := rc.cachedDenyFields(m.UniqueID, action); ok {
		return fields, nil
	}

	fields := make(FieldSet)
	for field := range m.PermissionFields(action) {
		allowed, err := m.HasFieldPermission(rc, field, action)
		if err != nil {
			return nil, err
		}
		if !allowed {
			fields[field] = struct{}{}
		}
	}
	rc.storeDenyFields(m.UniqueID, action, fields)
	return fields, nil
}

// stripFields copies obj projected onto the schema, without the keys in
// deny and extra. Keys outside the schema never pass: rows often come
// straight from the store, and columns the schema does not expose (a
// password hash, say) must not leak through a deny-list.
func stripFields(obj map[string]interface{}, schema Schema, deny, extra FieldSet) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		if !schema.HasField(k) || deny.Has(k) || extra.Has(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// OnListAfter projects every row of a list result onto the list schema and
// strips denied fields.
func (m *ModelAdmin) OnListAfter(rc *RequestContext, items []map[string]interface{}) ([]map[string]interface{}, error) {
	deny, err := m.DenyFields(rc, ActionList)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, stripFields(item, m.SchemaList, deny, nil))
	}
	return out, nil
}

// OnFilterPre projects incoming filter criteria onto the filter schema and
// drops denied keys.
func (m *ModelAdmin) OnFilterPre(rc *RequestContext, filter map[string]interface{}) (map[string]interface{}, error) {
	if len(filter) == 0 {
		return filter, nil
	}
	deny, err := m.DenyFields(rc, ActionFilter)
	if err != nil {
		return nil, err
	}
	return stripFields(filter, m.SchemaFilter, deny, nil), nil
}

// OnCreatePre projects the incoming create payload onto the create schema
// and strips denied and construction-excluded fields.
func (m *ModelAdmin) OnCreatePre(rc *RequestContext, obj map[string]interface{}) (map[string]interface{}, error) {
	deny, err := m.DenyFields(rc, ActionCreate)
	if err != nil {
		return nil, err
	}
	return stripFields(obj, m.SchemaCreate, deny, m.CreateExclude), nil
}

// OnUpdatePre projects the incoming update payload onto the update schema
// and strips denied and construction-excluded fields. The item id list
// passes through unchanged.
func (m *ModelAdmin) OnUpdatePre(rc *RequestContext, obj map[string]interface{}, _ []string) (map[string]interface{}, error) {
	deny, err := m.DenyFields(rc, ActionUpdate)
	if err != nil {
		return nil, err
	}
	return stripFields(obj, m.SchemaUpdate, deny, m.UpdateExclude), nil
}

// OnReadAfter projects a read result onto the read schema and strips
// denied fields.
func (m *ModelAdmin) OnReadAfter(rc *RequestContext, obj map[string]interface{}) (map[string]interface{}, error) {
	deny, err := m.DenyFields(rc, ActionRead)
	if err != nil {
		return nil, err
	}
	return stripFields(obj, m.SchemaRead, deny, nil), nil
}

// ReadRoute returns the read-by-id endpoint handler. It checks the coarse
// read gate first, loads the items, applies OnReadAfter per item, and
// unwraps single-item results to a scalar.
func (m *ModelAdmin) ReadRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := GinRequestContext(c)

		allowed, err := m.HasReadPermission(rc)
		if err != nil {
			httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
			return
		}
		if !allowed {
			httputils.WriteResponse(c, errors.ErrNoPermission, nil)
			return
		}

		itemIDs := strings.Split(c.Param("item_id"), ",")
		items, err := m.reader.ReadItems(c.Request.Context(), itemIDs)
		if err != nil {
			httputils.WriteResponse(c, err, nil)
			return
		}

		out := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			stripped, err := m.OnReadAfter(rc, item)
			if err != nil {
				httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
				return
			}
			out = append(out, stripped)
		}

		if len(out) == 1 {
			httputils.WriteResponse(c, nil, out[0])
			return
		}
		httputils.WriteResponse(c, nil, out)
	}
}

// FormItem is a minimal UI form-item definition.
type FormItem struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required,omitempty"`
}

// TableColumn is a minimal UI table-column definition.
type TableColumn struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// TableCRUD is a minimal UI table definition.
type TableCRUD struct {
	Columns  []TableColumn `json:"columns"`
	Footable bool          `json:"footable,omitempty"`
}

// GetFormItem returns the form item for the field, or nil when the field is
// denied. Field generation in list context is treated as the filter action
// (historical UI convention).
func (m *ModelAdmin) GetFormItem(rc *RequestContext, field Field, action string) (*FormItem, error) {
	act := action
	if action == ActionList {
		act = ActionFilter
	}
	deny, err := m.DenyFields(rc, act)
	if err != nil {
		return nil, err
	}
	if deny.Has(field.Key()) {
		return nil, nil
	}
	return &FormItem{Name: field.Key(), Label: field.Title, Required: field.Required}, nil
}

// GetListColumn returns the table column for the field, or nil when the
// field is denied for list display.
func (m *ModelAdmin) GetListColumn(rc *RequestContext, field Field) (*TableColumn, error) {
	deny, err := m.DenyFields(rc, ActionList)
	if err != nil {
		return nil, err
	}
	if deny.Has(field.Key()) {
		return nil, nil
	}
	return &TableColumn{Name: field.Key(), Label: field.Title}, nil
}

// ListTable builds the table definition from the list schema columns.
func (m *ModelAdmin) ListTable(rc *RequestContext) (*TableCRUD, error) {
	table := &TableCRUD{}
	for _, field := range m.SchemaList.Fields {
		column, err := m.GetListColumn(rc, field)
		if err != nil {
			return nil, err
		}
		if column != nil {
			table.Columns = append(table.Columns, *column)
		}
	}
	return table, nil
}

