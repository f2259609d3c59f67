package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IdentityStore = (*IdentityStore)(nil)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// IdentityStore implements driven.IdentityStore using PostgreSQL.
// Posts and drafts live in child tables so appends are single INSERTs.
type IdentityStore struct {
	db *DB
}

// NewIdentityStore creates a new IdentityStore
func NewIdentityStore(db *DB) *IdentityStore {
	return &IdentityStore{db: db}
}

const identityColumns = `
	internal_id, provider_user_id, provider_urn, display_name,
	encrypted_token, token_expires_at, welcome_posted_at, created_at, updated_at`

// keyColumn maps an identity key onto its indexed column.
func keyColumn(key domain.IdentityKey) (string, error) {
	switch key.Kind {
	case domain.KeyProviderUserID:
		return "provider_user_id", nil
	case domain.KeyInternalID:
		return "internal_id", nil
	default:
		return "", fmt.Errorf("%w: unknown identity key %q", domain.ErrInvalidInput, key.Kind)
	}
}

// GetByProviderUserID retrieves an identity with its history.
func (s *IdentityStore) GetByProviderUserID(ctx context.Context, providerUserID string) (*domain.Identity, error) {
	return s.get(ctx, s.db, domain.ByProviderUserID(providerUserID))
}

// GetByInternalID retrieves an identity with its history.
func (s *IdentityStore) GetByInternalID(ctx context.Context, internalID string) (*domain.Identity, error) {
	return s.get(ctx, s.db, domain.ByInternalID(internalID))
}

func (s *IdentityStore) get(ctx context.Context, q queryer, key domain.IdentityKey) (*domain.Identity, error) {
	column, err := keyColumn(key)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + identityColumns + ` FROM identities WHERE ` + column + ` = $1`
	identity, err := scanIdentity(q.QueryRowContext(ctx, query, key.Value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("get identity", err)
	}

	if identity.Posts, err = s.loadPosts(ctx, q, identity.InternalID); err != nil {
		return nil, domain.NewStoreError("load posts", err)
	}
	if identity.Drafts, err = s.loadDrafts(ctx, q, identity.InternalID); err != nil {
		return nil, domain.NewStoreError("load drafts", err)
	}
	return identity, nil
}

// UpsertCredential inserts or updates the credential in one statement.
// Existing rows keep internal_id, display_name, created_at and history.
func (s *IdentityStore) UpsertCredential(ctx context.Context, upsert domain.CredentialUpsert) (*domain.Identity, error) {
	query := `
		INSERT INTO identities (internal_id, provider_user_id, provider_urn, display_name,
			encrypted_token, token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (provider_user_id) DO UPDATE SET
			provider_urn = EXCLUDED.provider_urn,
			encrypted_token = EXCLUDED.encrypted_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING internal_id
	`

	var identity *domain.Identity
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var internalID string
		if err := tx.QueryRowContext(ctx, query,
			upsert.OnInsert.InternalID,
			upsert.ProviderUserID,
			upsert.ProviderURN,
			upsert.OnInsert.DisplayName,
			upsert.EncryptedToken,
			upsert.ExpiresAt,
			upsert.Now,
		).Scan(&internalID); err != nil {
			return err
		}

		var err error
		identity, err = s.get(ctx, tx, domain.ByInternalID(internalID))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		if isUniqueViolation(err, "identities_pkey") {
			return nil, fmt.Errorf("%w: internal id %s belongs to another member", domain.ErrInvalidInput, upsert.OnInsert.InternalID)
		}
		return nil, domain.NewStoreError("upsert credential", err)
	}
	return identity, nil
}

// AppendPost inserts a post row for the matching identity, if any.
func (s *IdentityStore) AppendPost(ctx context.Context, key domain.IdentityKey, post domain.PostRecord) (bool, error) {
	column, err := keyColumn(key)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO identity_posts (internal_id, provider_post_id, text, posted_at)
		SELECT internal_id, $2, $3, $4 FROM identities WHERE ` + column + ` = $1
	`
	result, err := s.db.ExecContext(ctx, query, key.Value, post.ProviderPostID, post.Text, post.PostedAt)
	return matchedRows(result, err, "append post")
}

// AppendDraft inserts a draft row for the matching identity, if any.
func (s *IdentityStore) AppendDraft(ctx context.Context, key domain.IdentityKey, draft domain.Draft) (bool, error) {
	column, err := keyColumn(key)
	if err != nil {
		return false, err
	}

	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO identity_drafts (id, internal_id, content, tags, created_at)
		SELECT $2, internal_id, $3, $4, $5 FROM identities WHERE ` + column + ` = $1
	`
	result, err := s.db.ExecContext(ctx, query, key.Value, draft.ID, draft.Content, pq.Array(tags), draft.CreatedAt)
	return matchedRows(result, err, "append draft")
}

// MarkWelcomePosted stamps welcome_posted_at.
func (s *IdentityStore) MarkWelcomePosted(ctx context.Context, key domain.IdentityKey, at time.Time) (bool, error) {
	column, err := keyColumn(key)
	if err != nil {
		return false, err
	}

	query := `UPDATE identities SET welcome_posted_at = $2 WHERE ` + column + ` = $1`
	result, err := s.db.ExecContext(ctx, query, key.Value, at)
	return matchedRows(result, err, "mark welcome posted")
}

// ListWelcomeCandidates returns identities with an unexpired token still
// awaiting the default post, oldest first. History is not loaded.
func (s *IdentityStore) ListWelcomeCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE encrypted_token IS NOT NULL
		  AND welcome_posted_at IS NULL
		  AND token_expires_at > $1
		ORDER BY created_at, internal_id
		LIMIT $2
	`

	// LIMIT NULL means no limit
	var rowLimit sql.NullInt64
	if limit > 0 {
		rowLimit = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, query, now, rowLimit)
	if err != nil {
		return nil, domain.NewStoreError("list welcome candidates", err)
	}
	defer rows.Close()

	var identities []*domain.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, domain.NewStoreError("scan identity", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("list welcome candidates", err)
	}
	return identities, nil
}

// Ping checks if the database is reachable
func (s *IdentityStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return domain.NewStoreError("ping", err)
	}
	return nil
}

func (s *IdentityStore) loadPosts(ctx context.Context, q queryer, internalID string) ([]domain.PostRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT provider_post_id, text, posted_at
		FROM identity_posts
		WHERE internal_id = $1
		ORDER BY seq
	`, internalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.PostRecord{}
	for rows.Next() {
		var p domain.PostRecord
		if err := rows.Scan(&p.ProviderPostID, &p.Text, &p.PostedAt); err != nil {
			return nil, err
		}
		p.PostedAt = p.PostedAt.UTC()
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *IdentityStore) loadDrafts(ctx context.Context, q queryer, internalID string) ([]domain.Draft, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, content, tags, created_at
		FROM identity_drafts
		WHERE internal_id = $1
		ORDER BY seq
	`, internalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drafts := []domain.Draft{}
	for rows.Next() {
		var d domain.Draft
		var tags pq.StringArray
		if err := rows.Scan(&d.ID, &d.Content, &tags, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Tags = []string(tags)
		d.CreatedAt = d.CreatedAt.UTC()
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*domain.Identity, error) {
	var (
		identity       domain.Identity
		token          []byte
		tokenExpiresAt sql.NullTime
		welcomePosted  sql.NullTime
	)
	err := row.Scan(
		&identity.InternalID,
		&identity.ProviderUserID,
		&identity.ProviderURN,
		&identity.DisplayName,
		&token,
		&tokenExpiresAt,
		&welcomePosted,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(token) > 0 && tokenExpiresAt.Valid {
		identity.Credential = &domain.Credential{
			EncryptedToken: token,
			ExpiresAt:      tokenExpiresAt.Time.UTC(),
		}
	}
	identity.WelcomePostedAt = TimePtr(welcomePosted)
	identity.CreatedAt = identity.CreatedAt.UTC()
	identity.UpdatedAt = identity.UpdatedAt.UTC()
	return &identity, nil
}

func matchedRows(result sql.Result, err error, op string) (bool, error) {
	if err != nil {
		return false, domain.NewStoreError(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, domain.NewStoreError(op, err)
	}
	return n > 0, nil
}
