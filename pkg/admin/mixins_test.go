package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

func TestReadOnlyModelAdmin(t *testing.T) {
	m, _ := newEmployeeAdmin(t)
	ro := NewReadOnlyModelAdmin(m)
	rc := NewRequestContext("alice")

	// Reads still go through the engine; mutations are refused outright.
	ok, err := ro.HasReadPermission(rc)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ro.HasCreatePermission(rc, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ro.HasUpdatePermission(rc, []string{"1"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ro.HasDeletePermission(rc, []string{"1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAutoTimeModelAdmin(t *testing.T) {
	m, _ := newEmployeeAdmin(t)
	at := NewAutoTimeModelAdmin(m)

	rc := NewRequestContext("alice")
	out, err := at.OnCreatePre(rc, map[string]interface{}{
		"name":        "ann",
		"create_time": "now",
		"update_time": "now",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "ann"}, out)

	out, err = at.OnUpdatePre(rc, map[string]interface{}{
		"notes":       "x",
		"delete_time": "never",
	}, []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"notes": "x"}, out)
}

type recordingDeleter struct {
	ids []string
	at  time.Time
}

func (d *recordingDeleter) MarkDeleted(_ context.Context, itemIDs []string, deletedAt time.Time) error {
	d.ids = itemIDs
	d.at = deletedAt
	return nil
}

type softEmployee struct {
	ID         int64  `json:"id" title:"ID"`
	Name       string `json:"name" title:"Name"`
	DeleteTime string `json:"delete_time" title:"Deleted"`
}

func TestSoftDeleteModelAdmin(t *testing.T) {
	enf := &stubEnforcer{deny: make(map[string]bool)}
	site := NewSite(NewAdmin("site", KindGroup, &PageSchema{Label: "Site"}), enf)

	m := NewModelAdmin(site, ModelAdminConfig{
		ID:          "soft-admin",
		Label:       "Soft",
		SchemaModel: SchemaOf(&softEmployee{}),
	})

	deleter := &recordingDeleter{}
	sd, err := NewSoftDeleteModelAdmin(m, deleter)
	require.NoError(t, err)

	cond, args := sd.SelectCondition()
	assert.Equal(t, "delete_time IS NULL", cond)
	assert.Empty(t, args)

	require.NoError(t, sd.DeleteItems(context.Background(), []string{"1", "2"}))
	assert.Equal(t, []string{"1", "2"}, deleter.ids)
	assert.False(t, deleter.at.IsZero())
}

func TestSoftDeleteRequiresDeleteTime(t *testing.T) {
	m, _ := newEmployeeAdmin(t)

	_, err := NewSoftDeleteModelAdmin(m, &recordingDeleter{})
	require.Error(t, err)
	assert.True(t, errors.ErrConfiguration.Is(err))
}

func TestFootableModelAdmin(t *testing.T) {
	m, _ := newEmployeeAdmin(t)
	ft := NewFootableModelAdmin(m)

	table, err := ft.ListTable(NewRequestContext("alice"))
	require.NoError(t, err)
	assert.True(t, table.Footable)
	assert.NotEmpty(t, table.Columns)
}
