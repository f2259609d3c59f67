package domain

import (
	"strings"
	"time"
)

// ProviderURNPrefix is the LinkedIn person URN prefix.
const ProviderURNPrefix = "urn:li:person:"

// ProviderURN builds the addressable LinkedIn reference for a member id.
func ProviderURN(providerUserID string) string {
	return ProviderURNPrefix + providerUserID
}

// Identity is one end-user who has started or completed authorization.
// It exclusively owns its credential, drafts and post history.
type Identity struct {
	InternalID     string `json:"internal_id"`
	ProviderUserID string `json:"provider_user_id"`
	ProviderURN    string `json:"provider_urn"`
	DisplayName    string `json:"display_name,omitempty"`

	// Credential is nil until a successful token exchange.
	Credential *Credential `json:"-"`

	Drafts []Draft      `json:"drafts"`
	Posts  []PostRecord `json:"posts"`

	// WelcomePostedAt is set once the background sweep has published the
	// default post for this identity.
	WelcomePostedAt *time.Time `json:"welcome_posted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential is the encrypted provider bearer token and its absolute expiry.
// The plaintext token is never stored.
type Credential struct {
	EncryptedToken []byte    `json:"-"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// UsableAt reports whether the credential can be used at the given instant.
func (c *Credential) UsableAt(now time.Time) bool {
	if c == nil || len(c.EncryptedToken) == 0 {
		return false
	}
	return now.Before(c.ExpiresAt)
}

// HasUsableCredential reports whether the identity can act downstream at now.
func (i *Identity) HasUsableCredential(now time.Time) bool {
	return i != nil && i.Credential.UsableAt(now)
}

// Draft is an unpublished piece of content. Drafts are append-only.
type Draft struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// PostRecord is the result of a successful publish.
type PostRecord struct {
	ProviderPostID string    `json:"post_id"`
	Text           string    `json:"text"`
	PostedAt       time.Time `json:"posted_at"`
}

// IdentityKeyKind selects which identifier an IdentityKey carries.
type IdentityKeyKind string

const (
	KeyProviderUserID IdentityKeyKind = "provider"
	KeyInternalID     IdentityKeyKind = "internal"
)

// IdentityKey addresses an identity either by provider user id (once known)
// or by internal id (before first authorization).
type IdentityKey struct {
	Kind  IdentityKeyKind
	Value string
}

// ByProviderUserID returns a key on the provider subject identifier.
func ByProviderUserID(id string) IdentityKey {
	return IdentityKey{Kind: KeyProviderUserID, Value: id}
}

// ByInternalID returns a key on the local primary key.
func ByInternalID(id string) IdentityKey {
	return IdentityKey{Kind: KeyInternalID, Value: id}
}

// Valid reports whether the key has a known kind and a non-empty value.
func (k IdentityKey) Valid() bool {
	if strings.TrimSpace(k.Value) == "" {
		return false
	}
	return k.Kind == KeyProviderUserID || k.Kind == KeyInternalID
}

func (k IdentityKey) String() string {
	return string(k.Kind) + ":" + k.Value
}

// TokenGuard decides whether an identity may perform an authenticated
// downstream action. It performs no I/O.
type TokenGuard struct {
	Now func() time.Time
}

// IsValid is true iff the identity has a credential with a token and the
// current time is before its expiry.
func (g TokenGuard) IsValid(identity *Identity) bool {
	if identity == nil {
		return false
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return identity.HasUsableCredential(now())
}

// IdentitySummary is a view of an identity without token material.
type IdentitySummary struct {
	InternalID      string     `json:"internal_id"`
	ProviderUserID  string     `json:"provider_user_id,omitempty"`
	ProviderURN     string     `json:"provider_urn,omitempty"`
	DisplayName     string     `json:"display_name,omitempty"`
	Connected       bool       `json:"connected"`
	TokenValid      bool       `json:"token_valid"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	DraftCount      int        `json:"draft_count"`
	PostCount       int        `json:"post_count"`
	WelcomePostedAt *time.Time `json:"welcome_posted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToSummary converts an Identity to its safe view as of now.
func (i *Identity) ToSummary(now time.Time) *IdentitySummary {
	s := &IdentitySummary{
		InternalID:      i.InternalID,
		ProviderUserID:  i.ProviderUserID,
		ProviderURN:     i.ProviderURN,
		DisplayName:     i.DisplayName,
		Connected:       i.Credential != nil,
		TokenValid:      i.Credential.UsableAt(now),
		DraftCount:      len(i.Drafts),
		PostCount:       len(i.Posts),
		WelcomePostedAt: i.WelcomePostedAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	if i.Credential != nil {
		exp := i.Credential.ExpiresAt
		s.ExpiresAt = &exp
	}
	return s
}

// CredentialUpsert is the single atomic get-or-create-then-update applied
// after a successful token exchange. OnInsert is only used when no identity
// with ProviderUserID exists yet.
type CredentialUpsert struct {
	ProviderUserID string
	ProviderURN    string
	EncryptedToken []byte
	ExpiresAt      time.Time
	Now            time.Time
	OnInsert       IdentityDefaults
}

// IdentityDefaults are the create-branch values of a CredentialUpsert.
// Drafts and posts always start empty.
type IdentityDefaults struct {
	InternalID  string
	DisplayName string
}
