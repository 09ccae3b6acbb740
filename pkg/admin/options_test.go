package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/admin-guard/pkg/permission"
)

func newTestSite(enf Enforcer) *Site {
	root := NewAdmin("site", KindGroup, &PageSchema{Label: "Site"})

	system := root.AddChild(NewAdmin("system", KindGroup, &PageSchema{Label: "System", Sort: 10}))
	system.AddChild(NewAdmin("user-admin", KindModel, &PageSchema{Label: "Users", Sort: 2}))
	system.AddChild(NewAdmin("role-admin", KindModel, &PageSchema{Label: "Roles", Sort: 5}))

	root.AddChild(NewAdmin("home", KindPage, &PageSchema{Label: "Home", Sort: 100}))

	form := root.AddChild(NewAdmin("report-form", KindForm, &PageSchema{Label: "Report", Sort: 1}))
	form.Actions = []Action{{Name: "export", Label: "Export"}}

	// Hidden nodes never enter the option tree.
	root.AddChild(NewAdmin("hidden", KindPage, nil))

	return NewSite(root, enf)
}

func optionValue(id, action string) string {
	return permission.Encode(id, permission.EncodeAdminAction(action))
}

func TestActionOptions(t *testing.T) {
	site := newTestSite(&stubEnforcer{})
	options := site.ActionOptions(site.Root())
	require.Len(t, options, 3)

	// Descending sort order.
	assert.Equal(t, "Home", options[0].Label)
	assert.Equal(t, "System", options[1].Label)
	assert.Equal(t, "Report", options[2].Label)

	system := options[1]
	assert.Equal(t, optionValue("system", "page"), system.Value)
	require.Len(t, system.Children, 2)
	assert.Equal(t, "Roles", system.Children[0].Label)

	users := system.Children[1]
	assert.Equal(t, optionValue("user-admin", "page"), users.Value)
	require.Len(t, users.Children, 1)
	assert.Equal(t, optionValue("user-admin", "list"), users.Children[0].Value)

	report := options[2]
	require.Len(t, report.Children, 2)
	assert.Equal(t, optionValue("report-form", "submit"), report.Children[0].Value)
	assert.Equal(t, optionValue("report-form", "export"), report.Children[1].Value)
	assert.Equal(t, "admin:page:action:export", permission.Decode(report.Children[1].Value)[1])
}

func TestActionOptionsMemoized(t *testing.T) {
	site := newTestSite(&stubEnforcer{})
	first := site.ActionOptions(site.Root())
	second := site.ActionOptions(site.Root())
	require.Len(t, second, len(first))
	assert.Same(t, first[0], second[0])

	site.InvalidateOptions()
	third := site.ActionOptions(site.Root())
	assert.NotSame(t, first[0], third[0])
}

func TestFormSubmitDefaultSkippedWhenRegistered(t *testing.T) {
	root := NewAdmin("site", KindGroup, &PageSchema{Label: "Site"})
	form := root.AddChild(NewAdmin("f", KindForm, &PageSchema{Label: "F"}))
	form.Actions = []Action{{Name: "submit", Label: "Send"}}

	options := buildActionOptions(root)
	require.Len(t, options, 1)
	require.Len(t, options[0].Children, 1)
	assert.Equal(t, "Send", options[0].Children[0].Label)
}

func TestFilterOptionsKeepsAncestors(t *testing.T) {
	site := newTestSite(&stubEnforcer{})
	options := site.ActionOptions(site.Root())

	// Only the leaf list permission is granted; its ancestors survive even
	// though they are not granted themselves.
	allowed := optionValue("user-admin", "list")
	filtered := FilterOptions(options, func(o *PermissionOption) bool {
		return o.Value == allowed
	})

	require.Len(t, filtered, 1)
	assert.Equal(t, "System", filtered[0].Label)
	require.Len(t, filtered[0].Children, 1)
	assert.Equal(t, "Users", filtered[0].Children[0].Label)
	require.Len(t, filtered[0].Children[0].Children, 1)
	assert.Equal(t, allowed, filtered[0].Children[0].Children[0].Value)

	// The memoized tree is untouched.
	assert.Len(t, options[1].Children, 2)
}

func TestOptionsForSubject(t *testing.T) {
	enf := &stubEnforcer{perms: []string{optionValue("home", "page")}}
	site := newTestSite(enf)

	options, err := site.OptionsForSubject("alice")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Home", options[0].Label)

	// Root sees the full tree without consulting the engine.
	enf.err = assert.AnError
	options, err = site.OptionsForSubject(UserRoot)
	require.NoError(t, err)
	assert.Len(t, options, 3)

	_, err = site.OptionsForSubject("alice")
	require.Error(t, err)
}

func TestGroupingPairs(t *testing.T) {
	site := newTestSite(&stubEnforcer{})
	pairs := site.GroupingPairs()

	assert.Contains(t, pairs, []string{"site", "system"})
	assert.Contains(t, pairs, []string{"system", "user-admin"})
	assert.Contains(t, pairs, []string{"system", "role-admin"})
	assert.Contains(t, pairs, []string{"site", "hidden"})
}

func TestActionFieldsRows(t *testing.T) {
	m, _ := newEmployeeAdmin(t)

	rows := m.ActionFieldsRows(ActionUpdate)
	require.Len(t, rows, 2)
	assert.Equal(t, FieldRow{Label: "Update-Salary", Rol: "update:salary"}, rows[0])
	assert.Equal(t, FieldRow{Label: "Update-Notes", Rol: "update:notes"}, rows[1])

	// List rows combine the display and the filter schema.
	rows = m.ActionFieldsRows(ActionList)
	require.Len(t, rows, 4)
	assert.Equal(t, "list:salary", rows[0].Rol)
	assert.Equal(t, "filter:salary", rows[2].Rol)

	assert.Empty(t, m.ActionFieldsRows("delete"))
}
