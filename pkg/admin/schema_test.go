package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type employeeBase struct {
	ID int64 `json:"id" title:"ID"`
}

type employee struct {
	employeeBase

	Name     string `json:"name" title:"Name" binding:"required"`
	Salary   int    `json:"salary" title:"Salary"`
	Notes    string `json:"notes"`
	Internal string `json:"-"`
	hidden   string
}

func TestSchemaOf(t *testing.T) {
	s := SchemaOf(&employee{})
	require.Len(t, s.Fields, 4)

	assert.Equal(t, "id", s.Fields[0].Key())
	assert.Equal(t, "ID", s.Fields[0].Title)

	assert.Equal(t, "name", s.Fields[1].Key())
	assert.True(t, s.Fields[1].Required)

	assert.Equal(t, "salary", s.Fields[2].Key())
	assert.False(t, s.Fields[2].Required)

	// Fields without a title tag fall back to the Go name.
	assert.Equal(t, "notes", s.Fields[3].Key())
	assert.Equal(t, "Notes", s.Fields[3].Title)

	assert.True(t, s.HasField("salary"))
	assert.False(t, s.HasField("internal"))
}

func TestSchemaOfNonStruct(t *testing.T) {
	assert.Empty(t, SchemaOf(42).Fields)
	assert.Empty(t, SchemaOf(nil).Fields)
}

func TestFieldsNameLabel(t *testing.T) {
	s := SchemaOf(&employee{})

	labels := FieldsNameLabel(s, "Update", true, []string{"id"})
	assert.Equal(t, map[string]string{
		"salary": "Update-Salary",
		"notes":  "Update-Notes",
	}, labels)

	// Required fields stay when excludeRequired is off.
	labels = FieldsNameLabel(s, "", false, nil)
	assert.Contains(t, labels, "name")
	assert.Equal(t, "Name", labels["name"])
}
