package domain

import "time"

// DefaultPKCETTL is how long an in-flight authorization attempt stays valid.
const DefaultPKCETTL = 10 * time.Minute

// PKCEEntry correlates an opaque state value with the PKCE code verifier
// generated for it. Entries are single-use.
type PKCEEntry struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	InternalID   string    `json:"internal_id,omitempty"`
	DisplayName  string    `json:"display_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the entry is past its window at now.
func (e *PKCEEntry) ExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
