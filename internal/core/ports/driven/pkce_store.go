package driven

import (
	"context"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

// PKCEStore holds in-flight authorization attempts keyed by state.
// Entries are single-use and expire after a short period.
type PKCEStore interface {
	// Save stores a new entry.
	// CreatedAt and ExpiresAt are filled in from the store TTL when zero.
	// Save never replaces an existing entry, consumed or not: a state that
	// is already known returns an error wrapping domain.ErrInvalidInput.
	Save(ctx context.Context, entry *domain.PKCEEntry) error

	// Consume atomically retrieves the entry for state and marks it used.
	// Two concurrent calls for the same state never both return an entry.
	// Returns nil, nil if the state doesn't exist, was already consumed or
	// has expired; an expired entry is deleted as part of the call.
	// A consumed entry is kept until it expires so the state cannot be
	// registered again inside its window.
	Consume(ctx context.Context, state string) (*domain.PKCEEntry, error)

	// Cleanup removes expired entries, consumed or not, and returns how
	// many were removed.
	// Should be called periodically to clean up abandoned attempts.
	Cleanup(ctx context.Context) (int64, error)
}
