package driven

import (
	"context"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

// IdentityStore persists identities together with their embedded credential,
// drafts and post history.
//
// Implementations must make UpsertCredential atomic per identity and must
// implement the append operations with an atomic append primitive, never a
// read-modify-write, so concurrent appenders cannot lose elements.
//
// Backend failures are returned wrapped in *domain.StoreError; a missing
// record is domain.ErrNotFound (or matched=false for the append operations).
type IdentityStore interface {
	// GetByProviderUserID retrieves an identity by provider subject id.
	GetByProviderUserID(ctx context.Context, providerUserID string) (*domain.Identity, error)

	// GetByInternalID retrieves an identity by its local primary key.
	GetByInternalID(ctx context.Context, internalID string) (*domain.Identity, error)

	// UpsertCredential creates the identity if absent (using OnInsert
	// defaults and empty history), otherwise overwrites the credential,
	// provider URN and updated_at while leaving history untouched.
	UpsertCredential(ctx context.Context, upsert domain.CredentialUpsert) (*domain.Identity, error)

	// AppendPost atomically appends a post record.
	// Returns false if no identity matches the key.
	AppendPost(ctx context.Context, key domain.IdentityKey, post domain.PostRecord) (matched bool, err error)

	// AppendDraft atomically appends a draft.
	// Returns false if no identity matches the key.
	AppendDraft(ctx context.Context, key domain.IdentityKey, draft domain.Draft) (matched bool, err error)

	// MarkWelcomePosted records that the default post was published.
	MarkWelcomePosted(ctx context.Context, key domain.IdentityKey, at time.Time) (matched bool, err error)

	// ListWelcomeCandidates returns identities whose credential is still
	// usable at now and that have not yet received the default post.
	// Expired credentials are filtered before limit is applied.
	// limit <= 0 means no limit.
	ListWelcomeCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Identity, error)

	// Ping checks if the store backend is healthy.
	Ping(ctx context.Context) error
}
