package casbin

import "strings"

// defaultModel is the RBAC model used by admin-guard.
//
// Requests carry two action keys: act1 is the narrow (usually per-field) key,
// act2 the page-level fallback. A policy rule matches when its stored action
// key covers either of them. The g relation links subjects to roles; the g2
// relation mirrors the admin resource hierarchy so that a grant on a parent
// resource reaches its descendants.
const defaultModel = `
[request_definition]
r = sub, obj, act1, act2

[policy_definition]
p = sub, obj, act1, act2, v4, v5

[role_definition]
g = _, _
g2 = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && g2(p.obj, r.obj) && (actionMatch(r.act1, p.act1) || actionMatch(r.act2, p.act1))
`

// actionMatch reports whether the granted action key covers the requested
// one. A grant covers a request when it is equal to it or is a strict
// colon-delimited prefix of it, which is what makes "admin:page" imply
// "admin:page:update" and "page:update" imply "page:update:salary".
// An empty grant covers nothing.
func actionMatch(requested, granted string) bool {
	if granted == "" {
		return false
	}
	return requested == granted || strings.HasPrefix(requested, granted+":")
}

// actionMatchFunc adapts actionMatch to the casbin matcher function ABI.
func actionMatchFunc(args ...interface{}) (interface{}, error) {
	requested, _ := args[0].(string)
	granted, _ := args[1].(string)
	return actionMatch(requested, granted), nil
}
