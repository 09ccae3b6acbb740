package admin

import (
	"context"
	"time"

	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// autoTimeFields are managed by the persistence layer and never accepted
// from client payloads.
var autoTimeFields = []string{"id", "create_time", "update_time", "delete_time"}

// ReadOnlyModelAdmin is a model admin that refuses every mutating action
// regardless of policy.
type ReadOnlyModelAdmin struct {
	*ModelAdmin
}

// NewReadOnlyModelAdmin wraps a model admin as read-only.
func NewReadOnlyModelAdmin(m *ModelAdmin) *ReadOnlyModelAdmin {
	return &ReadOnlyModelAdmin{ModelAdmin: m}
}

// HasCreatePermission always denies.
func (m *ReadOnlyModelAdmin) HasCreatePermission(_ *RequestContext, _ map[string]interface{}) (bool, error) {
	return false, nil
}

// HasUpdatePermission always denies.
func (m *ReadOnlyModelAdmin) HasUpdatePermission(_ *RequestContext, _ []string, _ map[string]interface{}) (bool, error) {
	return false, nil
}

// HasDeletePermission always denies.
func (m *ReadOnlyModelAdmin) HasDeletePermission(_ *RequestContext, _ []string) (bool, error) {
	return false, nil
}

// AutoTimeModelAdmin drops the auto-managed id and timestamp fields from
// create and update payloads.
type AutoTimeModelAdmin struct {
	*ModelAdmin
}

// NewAutoTimeModelAdmin wraps a model admin with auto-time field handling.
func NewAutoTimeModelAdmin(m *ModelAdmin) *AutoTimeModelAdmin {
	for _, field := range autoTimeFields {
		m.CreateExclude[field] = struct{}{}
		m.UpdateExclude[field] = struct{}{}
	}
	return &AutoTimeModelAdmin{ModelAdmin: m}
}

// ItemDeleter marks soft-deleted items by timestamp instead of removing
// them.
type ItemDeleter interface {
	MarkDeleted(ctx context.Context, itemIDs []string, deletedAt time.Time) error
}

// SoftDeleteModelAdmin scopes queries to live rows and converts deletes
// into delete_time updates. The model schema must carry a delete_time
// field.
type SoftDeleteModelAdmin struct {
	*AutoTimeModelAdmin

	deleter ItemDeleter
}

// NewSoftDeleteModelAdmin wraps a model admin with soft-delete semantics.
// It fails when the model schema has no delete_time field.
func NewSoftDeleteModelAdmin(m *ModelAdmin, deleter ItemDeleter) (*SoftDeleteModelAdmin, error) {
	if !m.SchemaModel.HasField("delete_time") {
		return nil, errors.ErrConfiguration.WithMessagef("model %s: soft delete requires a delete_time field", m.UniqueID)
	}
	return &SoftDeleteModelAdmin{
		AutoTimeModelAdmin: NewAutoTimeModelAdmin(m),
		deleter:            deleter,
	}, nil
}

// SelectCondition returns the query condition restricting results to live
// rows.
func (m *SoftDeleteModelAdmin) SelectCondition() (string, []interface{}) {
	return "delete_time IS NULL", nil
}

// DeleteItems marks the items deleted with the current timestamp.
func (m *SoftDeleteModelAdmin) DeleteItems(ctx context.Context, itemIDs []string) error {
	return m.deleter.MarkDeleted(ctx, itemIDs, time.Now())
}

// FootableModelAdmin renders list tables with responsive footable layout.
type FootableModelAdmin struct {
	*ModelAdmin
}

// NewFootableModelAdmin wraps a model admin with footable table output.
func NewFootableModelAdmin(m *ModelAdmin) *FootableModelAdmin {
	return &FootableModelAdmin{ModelAdmin: m}
}

// ListTable builds the table definition with footable enabled.
func (m *FootableModelAdmin) ListTable(rc *RequestContext) (*TableCRUD, error) {
	table, err := m.ModelAdmin.ListTable(rc)
	if err != nil {
		return nil, err
	}
	table.Footable = true
	return table, nil
}
