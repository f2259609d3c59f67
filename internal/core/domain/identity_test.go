package domain

import (
	"testing"
	"time"
)

func TestCredentialUsableAt(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cred     *Credential
		expected bool
	}{
		{name: "nil credential", cred: nil, expected: false},
		{name: "empty token", cred: &Credential{ExpiresAt: now.Add(time.Hour)}, expected: false},
		{name: "valid", cred: &Credential{EncryptedToken: []byte("x"), ExpiresAt: now.Add(time.Hour)}, expected: true},
		{name: "expires exactly now", cred: &Credential{EncryptedToken: []byte("x"), ExpiresAt: now}, expected: false},
		{name: "expired", cred: &Credential{EncryptedToken: []byte("x"), ExpiresAt: now.Add(-time.Second)}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.UsableAt(now); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTokenGuard(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	guard := TokenGuard{Now: func() time.Time { return now }}

	if guard.IsValid(nil) {
		t.Error("nil identity must not be valid")
	}
	if guard.IsValid(&Identity{ProviderUserID: "42"}) {
		t.Error("identity without credential must not be valid")
	}

	identity := &Identity{
		ProviderUserID: "42",
		Credential:     &Credential{EncryptedToken: []byte("x"), ExpiresAt: now.Add(time.Minute)},
	}
	if !guard.IsValid(identity) {
		t.Error("expected identity with fresh credential to be valid")
	}

	later := TokenGuard{Now: func() time.Time { return now.Add(2 * time.Minute) }}
	if later.IsValid(identity) {
		t.Error("expected credential to be invalid after expiry")
	}
}

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name  string
		key   IdentityKey
		valid bool
		str   string
	}{
		{name: "provider", key: ByProviderUserID("42"), valid: true, str: "provider:42"},
		{name: "internal", key: ByInternalID("abc"), valid: true, str: "internal:abc"},
		{name: "blank value", key: ByProviderUserID("  "), valid: false, str: "provider:  "},
		{name: "unknown kind", key: IdentityKey{Kind: "email", Value: "a@b"}, valid: false, str: "email:a@b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key.Valid() != tt.valid {
				t.Errorf("expected Valid() = %v", tt.valid)
			}
			if tt.key.String() != tt.str {
				t.Errorf("expected %q, got %q", tt.str, tt.key.String())
			}
		})
	}
}

func TestToSummary(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)

	identity := &Identity{
		InternalID:     "internal-1",
		ProviderUserID: "42",
		ProviderURN:    ProviderURN("42"),
		Credential:     &Credential{EncryptedToken: []byte("secret"), ExpiresAt: exp},
		Drafts:         []Draft{{ID: "d1"}},
		Posts:          []PostRecord{{ProviderPostID: "p1"}, {ProviderPostID: "p2"}},
	}

	s := identity.ToSummary(now)
	if !s.Connected || !s.TokenValid {
		t.Errorf("expected connected and valid, got %+v", s)
	}
	if s.ExpiresAt == nil || !s.ExpiresAt.Equal(exp) {
		t.Errorf("expected expires_at %v, got %v", exp, s.ExpiresAt)
	}
	if s.DraftCount != 1 || s.PostCount != 2 {
		t.Errorf("unexpected counts: drafts=%d posts=%d", s.DraftCount, s.PostCount)
	}
	if s.ProviderURN != "urn:li:person:42" {
		t.Errorf("unexpected urn %q", s.ProviderURN)
	}

	pending := (&Identity{InternalID: "internal-2"}).ToSummary(now)
	if pending.Connected || pending.TokenValid || pending.ExpiresAt != nil {
		t.Errorf("expected unconnected summary, got %+v", pending)
	}
}

func TestAuthContextHasScope(t *testing.T) {
	unrestricted := &AuthContext{Subject: "agent"}
	if !unrestricted.HasScope(ScopePublish) {
		t.Error("caller without scopes should be unrestricted")
	}

	scoped := &AuthContext{Subject: "agent", Scopes: []string{ScopeDrafts}}
	if !scoped.HasScope(ScopeDrafts) {
		t.Error("expected drafts scope")
	}
	if scoped.HasScope(ScopePublish) {
		t.Error("publish scope was not granted")
	}
}

func TestPKCEEntryExpiredAt(t *testing.T) {
	created := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	entry := &PKCEEntry{State: "s", CodeVerifier: "v", CreatedAt: created, ExpiresAt: created.Add(DefaultPKCETTL)}

	if entry.ExpiredAt(created.Add(DefaultPKCETTL)) {
		t.Error("entry should still be valid at exactly its expiry")
	}
	if !entry.ExpiredAt(created.Add(DefaultPKCETTL + time.Nanosecond)) {
		t.Error("entry should be expired after its window")
	}
}
