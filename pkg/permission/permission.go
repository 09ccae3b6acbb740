// Package permission implements the compact permission-string codec and the
// admin action key normalization shared by the policy engine adapter and the
// permission management UI.
//
// A permission string is a fixed five-segment, "#"-delimited value:
//
//	resource#act1#act2#v4#v5
//
// The subject is never part of the encoded string; it lives in the first
// column of the stored policy rule.
package permission

import "strings"

// Segments is the fixed number of segments in an encoded permission string.
const Segments = 5

// Subject and role identifiers carry a kind prefix so that user and role
// names can never collide inside the policy store.
const (
	// SubjectPrefix marks a user subject, e.g. "u:alice".
	SubjectPrefix = "u:"

	// RolePrefix marks a role key, e.g. "r:admin".
	RolePrefix = "r:"
)

// Encode joins up to five positional segments with "#", right-padding
// missing segments with empty strings. Encode never fails.
//
// Known limitation: there is no escaping for "#" inside a segment. A segment
// containing the delimiter will corrupt a later Decode.
func Encode(fieldValues ...string) string {
	values := append(make([]string, 0, Segments), fieldValues...)
	for len(values) < Segments {
		values = append(values, "")
	}
	return strings.Join(values, "#")
}

// Decode splits an encoded permission string on "#". Results shorter than
// five segments are padded with empty strings; extra segments are preserved
// as-is. Decode never fails.
func Decode(permission string) []string {
	values := strings.Split(permission, "#")
	for len(values) < Segments {
		values = append(values, "")
	}
	return values
}

// pageVerbs is the fixed set of built-in page verbs.
var pageVerbs = map[string]struct{}{
	"list":        {},
	"update":      {},
	"bulk_update": {},
	"create":      {},
	"bulk_create": {},
	"read":        {},
	"submit":      {},
}

// EncodeAdminAction maps a raw admin action name to its canonical permission
// key. The mapping is total and encodes an implicit hierarchy: a grant on
// "admin:page" implies every verb below it, and a grant on a verb implies its
// narrower per-field checks.
//
//	page        -> admin:page
//	list        -> admin:page:list           (likewise for the other built-in verbs)
//	export_csv  -> admin:page:action:export_csv
func EncodeAdminAction(action string) string {
	prefix := "admin:"
	if action == "page" {
		return prefix + action
	}
	prefix += "page:"
	if _, ok := pageVerbs[action]; ok {
		return prefix + action
	}
	prefix += "action:"
	return prefix + action
}
