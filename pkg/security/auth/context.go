// Package auth provides identity context plumbing for admin-guard.
// Authentication itself (establishing the identity) happens upstream; this
// package only carries the already-resolved subject through the request.
package auth

import (
	"context"
)

// contextKey is the type for context keys in this package.
type contextKey string

const (
	// subjectKey is the context key for storing the subject (user identity).
	subjectKey contextKey = "auth:subject"

	// tokenKey is the context key for storing the raw token string.
	tokenKey contextKey = "auth:token"
)

// ContextWithSubject returns a new context with the given subject.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the subject from the context.
// Returns empty string if no subject is found.
func SubjectFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey).(string); ok {
		return subject
	}
	return ""
}

// ContextWithToken returns a new context with the given token string.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the token string from the context.
// Returns empty string if no token is found.
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}
