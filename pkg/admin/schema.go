package admin

import (
	"reflect"
	"strings"
)

// Field describes one schema field as seen by the permission layer.
type Field struct {
	// Name is the Go-side field name.
	Name string

	// Alias is the wire name (json tag); empty means Name is used.
	Alias string

	// Title is the human-readable label.
	Title string

	// Required marks fields that must always be present; required fields are
	// never subject to permission checks.
	Required bool
}

// Key returns the alias if set, otherwise the name.
func (f Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Schema is an ordered collection of fields for one CRUD schema.
type Schema struct {
	Fields []Field
}

// HasField reports whether the schema declares a field with the given key.
func (s Schema) HasField(key string) bool {
	for _, field := range s.Fields {
		if field.Key() == key {
			return true
		}
	}
	return false
}

// SchemaOf derives a Schema from a struct value or pointer via tags:
// the json tag supplies the alias ("-" skips the field), the title tag the
// label (defaulting to the field name), and a binding tag containing
// "required" marks the field required. Embedded structs are flattened.
func SchemaOf(v interface{}) Schema {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var s Schema
	if t == nil || t.Kind() != reflect.Struct {
		return s
	}
	s.Fields = structFields(t)
	return s
}

func structFields(t reflect.Type) []Field {
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		// An anonymous embed promotes its exported fields even when the
		// embedded type itself is unexported, so recurse before the
		// export check.
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			fields = append(fields, structFields(sf.Type)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}

		alias, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if alias == "-" {
			continue
		}

		field := Field{
			Name:     sf.Name,
			Alias:    alias,
			Title:    sf.Tag.Get("title"),
			Required: strings.Contains(sf.Tag.Get("binding"), "required"),
		}
		if field.Title == "" {
			field.Title = sf.Name
		}
		fields = append(fields, field)
	}
	return fields
}

// FieldsNameLabel returns {fieldKey: "<prefix>-<title>"} for the schema
// fields subject to permission checks. Required fields are skipped when
// excludeRequired is set; excluded keys never appear.
func FieldsNameLabel(s Schema, prefix string, excludeRequired bool, exclude []string) map[string]string {
	skip := make(map[string]struct{}, len(exclude))
	for _, key := range exclude {
		skip[key] = struct{}{}
	}

	labels := make(map[string]string, len(s.Fields))
	for _, field := range s.Fields {
		if excludeRequired && field.Required {
			continue
		}
		if _, ok := skip[field.Key()]; ok {
			continue
		}
		label := field.Title
		if prefix != "" {
			label = prefix + "-" + label
		}
		labels[field.Key()] = label
	}
	return labels
}
