package admin

import (
	"context"

	"github.com/gin-gonic/gin"
)

// FieldSet is a set of schema field keys.
type FieldSet map[string]struct{}

// Has reports whether key is in the set.
func (s FieldSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// NewFieldSet builds a FieldSet from keys.
func NewFieldSet(keys ...string) FieldSet {
	set := make(FieldSet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// RequestContext carries the resolved subject and the request-scoped
// deny-field cache through one request. It is owned by a single request task
// and therefore deliberately unsynchronized.
type RequestContext struct {
	subject    string
	denyFields map[string]FieldSet
}

// NewRequestContext creates a request context for the given subject. An
// empty subject resolves to the guest identity.
func NewRequestContext(subject string) *RequestContext {
	return &RequestContext{
		subject:    subject,
		denyFields: make(map[string]FieldSet),
	}
}

// Subject returns the resolved subject, falling back to guest.
func (r *RequestContext) Subject() string {
	if r.subject == "" {
		return UserGuest
	}
	return r.subject
}

// cachedDenyFields looks up the memoized deny set for (resourceID, action).
// Presence of the key decides the hit, so empty results are cached too.
func (r *RequestContext) cachedDenyFields(resourceID, action string) (FieldSet, bool) {
	fields, ok := r.denyFields[resourceID+"#"+action]
	return fields, ok
}

// storeDenyFields memoizes the deny set for (resourceID, action).
func (r *RequestContext) storeDenyFields(resourceID, action string, fields FieldSet) {
	r.denyFields[resourceID+"#"+action] = fields
}

type requestContextKey struct{}

// WithRequestContext attaches the request context to ctx.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the request context from ctx, nil if absent.
func RequestContextFrom(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

// GinContextKey is the gin context key holding the request context.
const GinContextKey = "admin-guard:request-context"

// GinRequestContext returns the request context attached to the gin context,
// creating and attaching a guest context when none is present.
func GinRequestContext(c *gin.Context) *RequestContext {
	if v, ok := c.Get(GinContextKey); ok {
		if rc, ok := v.(*RequestContext); ok {
			return rc
		}
	}
	rc := NewRequestContext("")
	c.Set(GinContextKey, rc)
	return rc
}
