// Package auth verifies bearer tokens and carries the authenticated user ID
// through the request context.
//
// Token issuance lives in an external identity service; this package only
// answers "which user does this token belong to".
package auth

import "context"

// Verifier resolves a bearer token to a user ID.
type Verifier interface {
	// UserFor returns the user ID the token authenticates, or false when the
	// token is unknown.
	UserFor(token string) (string, bool)
}

// StaticVerifier is a fixed token → user-ID map, loaded from configuration.
type StaticVerifier map[string]string

// Compile-time interface check.
var _ Verifier = (StaticVerifier)(nil)

// UserFor implements [Verifier].
func (v StaticVerifier) UserFor(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	user, ok := v[token]
	return user, ok
}

type contextKey struct{}

// WithUser returns a context carrying the authenticated user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID extracts the authenticated user ID set by [WithUser].
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	return userID, ok && userID != ""
}
