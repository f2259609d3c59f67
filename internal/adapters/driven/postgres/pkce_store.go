package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Ensure PKCEStore implements the interface.
var _ driven.PKCEStore = (*PKCEStore)(nil)

// PKCEStore implements driven.PKCEStore using PostgreSQL.
type PKCEStore struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewPKCEStore creates a new PostgreSQL-backed PKCE store.
func NewPKCEStore(db *DB, ttl time.Duration) *PKCEStore {
	if ttl <= 0 {
		ttl = domain.DefaultPKCETTL
	}
	return &PKCEStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

// Save inserts a new entry. The state primary key refuses a state that is
// already stored, consumed or not.
func (s *PKCEStore) Save(ctx context.Context, entry *domain.PKCEEntry) error {
	now := s.now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = entry.CreatedAt.Add(s.ttl)
	}

	query := `
		INSERT INTO pkce_states (state, code_verifier, internal_id, display_name, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.State,
		entry.CodeVerifier,
		entry.InternalID,
		entry.DisplayName,
		entry.CreatedAt,
		entry.ExpiresAt,
	)
	if isUniqueViolation(err, "pkce_states_pkey") {
		return domain.ErrStateRegistered
	}
	if err != nil {
		return domain.NewStoreError("save pkce state", err)
	}

	return nil
}

// Consume marks the entry consumed and returns it. The row lock taken by
// UPDATE gives single-use semantics under concurrency. When nothing is
// returned, an expired row is deleted.
func (s *PKCEStore) Consume(ctx context.Context, state string) (*domain.PKCEEntry, error) {
	now := s.now()
	query := `
		UPDATE pkce_states SET consumed_at = $2
		WHERE state = $1 AND consumed_at IS NULL AND expires_at >= $2
		RETURNING state, code_verifier, internal_id, display_name, created_at, expires_at
	`

	var entry domain.PKCEEntry
	err := s.db.QueryRowContext(ctx, query, state, now).Scan(
		&entry.State,
		&entry.CodeVerifier,
		&entry.InternalID,
		&entry.DisplayName,
		&entry.CreatedAt,
		&entry.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM pkce_states WHERE state = $1 AND expires_at < $2`, state, now); err != nil {
			return nil, domain.NewStoreError("consume pkce state", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("consume pkce state", err)
	}

	return &entry, nil
}

// Cleanup removes expired entries.
func (s *PKCEStore) Cleanup(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pkce_states WHERE expires_at < $1`, s.now())
	if err != nil {
		return 0, domain.NewStoreError("cleanup pkce states", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, domain.NewStoreError("cleanup pkce states", err)
	}
	return n, nil
}
