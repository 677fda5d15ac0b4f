package auth_test

import (
	"context"
	"testing"

	"github.com/mkeskkula/haaldus/internal/auth"
)

func TestStaticVerifier_UserFor(t *testing.T) {
	t.Parallel()
	v := auth.StaticVerifier{"tok-1": "u1", "tok-2": "u2"}

	tests := []struct {
		name     string
		token    string
		wantUser string
		wantOK   bool
	}{
		{"known token", "tok-1", "u1", true},
		{"second token", "tok-2", "u2", true},
		{"unknown token", "tok-3", "", false},
		{"empty token", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			user, ok := v.UserFor(tc.token)
			if user != tc.wantUser || ok != tc.wantOK {
				t.Errorf("UserFor(%q) = (%q, %v), want (%q, %v)", tc.token, user, ok, tc.wantUser, tc.wantOK)
			}
		})
	}
}

func TestStaticVerifier_EmptyTokenNeverMatches(t *testing.T) {
	t.Parallel()
	// A map entry keyed on the empty string must not authenticate requests
	// without a token.
	v := auth.StaticVerifier{"": "ghost"}
	if user, ok := v.UserFor(""); ok {
		t.Errorf("UserFor(\"\") = (%q, true), want miss", user)
	}
}

func TestUserID_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := auth.WithUser(context.Background(), "u1")
	user, ok := auth.UserID(ctx)
	if !ok || user != "u1" {
		t.Errorf("UserID = (%q, %v), want (\"u1\", true)", user, ok)
	}
}

func TestUserID_MissingOrEmpty(t *testing.T) {
	t.Parallel()
	if user, ok := auth.UserID(context.Background()); ok {
		t.Errorf("UserID on bare context = (%q, true), want miss", user)
	}
	ctx := auth.WithUser(context.Background(), "")
	if user, ok := auth.UserID(ctx); ok {
		t.Errorf("UserID with empty user = (%q, true), want miss", user)
	}
}
