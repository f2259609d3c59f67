package bolt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IdentityStore = (*IdentityStore)(nil)

// identityRecord is the on-disk form of an identity. Unlike the domain
// type it carries the encrypted token.
type identityRecord struct {
	InternalID      string              `json:"internal_id"`
	ProviderUserID  string              `json:"provider_user_id"`
	ProviderURN     string              `json:"provider_urn"`
	DisplayName     string              `json:"display_name"`
	Token           []byte              `json:"token,omitempty"`
	TokenExpiresAt  *time.Time          `json:"token_expires_at,omitempty"`
	Drafts          []domain.Draft      `json:"drafts"`
	Posts           []domain.PostRecord `json:"posts"`
	WelcomePostedAt *time.Time          `json:"welcome_posted_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (r *identityRecord) toDomain() *domain.Identity {
	identity := &domain.Identity{
		InternalID:      r.InternalID,
		ProviderUserID:  r.ProviderUserID,
		ProviderURN:     r.ProviderURN,
		DisplayName:     r.DisplayName,
		Drafts:          r.Drafts,
		Posts:           r.Posts,
		WelcomePostedAt: r.WelcomePostedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if identity.Drafts == nil {
		identity.Drafts = []domain.Draft{}
	}
	if identity.Posts == nil {
		identity.Posts = []domain.PostRecord{}
	}
	if len(r.Token) > 0 && r.TokenExpiresAt != nil {
		identity.Credential = &domain.Credential{
			EncryptedToken: r.Token,
			ExpiresAt:      *r.TokenExpiresAt,
		}
	}
	return identity
}

// IdentityStore implements driven.IdentityStore on bbolt. Identities are
// keyed by internal id with a secondary provider-id index bucket.
type IdentityStore struct {
	db *DB
}

// NewIdentityStore creates a new IdentityStore
func NewIdentityStore(db *DB) *IdentityStore {
	return &IdentityStore{db: db}
}

// GetByProviderUserID retrieves an identity by provider subject id.
func (s *IdentityStore) GetByProviderUserID(ctx context.Context, providerUserID string) (*domain.Identity, error) {
	return s.get(domain.ByProviderUserID(providerUserID))
}

// GetByInternalID retrieves an identity by internal id.
func (s *IdentityStore) GetByInternalID(ctx context.Context, internalID string) (*domain.Identity, error) {
	return s.get(domain.ByInternalID(internalID))
}

func (s *IdentityStore) get(key domain.IdentityKey) (*domain.Identity, error) {
	var rec *identityRecord
	err := s.db.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, err = lookup(tx, key)
		return err
	})
	if err != nil {
		return nil, storeErr("get identity", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

// UpsertCredential creates or updates the identity inside one transaction.
func (s *IdentityStore) UpsertCredential(ctx context.Context, upsert domain.CredentialUpsert) (*domain.Identity, error) {
	var rec *identityRecord
	err := s.db.db.Update(func(tx *bolt.Tx) error {
		var err error
		rec, err = lookup(tx, domain.ByProviderUserID(upsert.ProviderUserID))
		if err != nil {
			return err
		}

		expiresAt := upsert.ExpiresAt
		if rec == nil {
			if rec, err = lookup(tx, domain.ByInternalID(upsert.OnInsert.InternalID)); err != nil {
				return err
			}
			if rec != nil {
				return fmt.Errorf("%w: internal id %s belongs to another member", domain.ErrInvalidInput, upsert.OnInsert.InternalID)
			}
			rec = &identityRecord{
				InternalID:     upsert.OnInsert.InternalID,
				ProviderUserID: upsert.ProviderUserID,
				DisplayName:    upsert.OnInsert.DisplayName,
				Drafts:         []domain.Draft{},
				Posts:          []domain.PostRecord{},
				CreatedAt:      upsert.Now,
			}
			if err := tx.Bucket(providerBucket).Put([]byte(rec.ProviderUserID), []byte(rec.InternalID)); err != nil {
				return err
			}
		}

		rec.ProviderURN = upsert.ProviderURN
		rec.Token = upsert.EncryptedToken
		rec.TokenExpiresAt = &expiresAt
		rec.UpdatedAt = upsert.Now
		return putJSON(tx.Bucket(identitiesBucket), []byte(rec.InternalID), rec)
	})
	if err != nil {
		return nil, storeErr("upsert credential", err)
	}
	return rec.toDomain(), nil
}

// AppendPost appends a post record.
func (s *IdentityStore) AppendPost(ctx context.Context, key domain.IdentityKey, post domain.PostRecord) (bool, error) {
	return s.modify("append post", key, func(rec *identityRecord) {
		rec.Posts = append(rec.Posts, post)
	})
}

// AppendDraft appends a draft.
func (s *IdentityStore) AppendDraft(ctx context.Context, key domain.IdentityKey, draft domain.Draft) (bool, error) {
	if draft.Tags == nil {
		draft.Tags = []string{}
	}
	return s.modify("append draft", key, func(rec *identityRecord) {
		rec.Drafts = append(rec.Drafts, draft)
	})
}

// MarkWelcomePosted stamps the welcome time.
func (s *IdentityStore) MarkWelcomePosted(ctx context.Context, key domain.IdentityKey, at time.Time) (bool, error) {
	return s.modify("mark welcome posted", key, func(rec *identityRecord) {
		rec.WelcomePostedAt = &at
	})
}

// modify applies fn to the matching record within a single write
// transaction, so the read and write cannot interleave with another writer.
func (s *IdentityStore) modify(op string, key domain.IdentityKey, fn func(*identityRecord)) (bool, error) {
	if !key.Valid() {
		return false, fmt.Errorf("%w: identity key %s", domain.ErrInvalidInput, key)
	}

	matched := false
	err := s.db.db.Update(func(tx *bolt.Tx) error {
		rec, err := lookup(tx, key)
		if err != nil || rec == nil {
			return err
		}
		fn(rec)
		matched = true
		return putJSON(tx.Bucket(identitiesBucket), []byte(rec.InternalID), rec)
	})
	if err != nil {
		return false, storeErr(op, err)
	}
	return matched, nil
}

// ListWelcomeCandidates scans for identities with an unexpired token and
// no default post, oldest first.
func (s *IdentityStore) ListWelcomeCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Identity, error) {
	var records []*identityRecord
	err := s.db.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(identitiesBucket).ForEach(func(k, v []byte) error {
			var rec identityRecord
			if _, err := getJSON(tx.Bucket(identitiesBucket), k, &rec); err != nil {
				return err
			}
			if rec.WelcomePostedAt == nil && rec.toDomain().HasUsableCredential(now) {
				records = append(records, &rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, storeErr("list welcome candidates", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].InternalID < records[j].InternalID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	identities := make([]*domain.Identity, 0, len(records))
	for _, rec := range records {
		identities = append(identities, rec.toDomain())
	}
	return identities, nil
}

// Ping checks the database is open.
func (s *IdentityStore) Ping(ctx context.Context) error {
	err := s.db.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(identitiesBucket) == nil {
			return errors.New("identities bucket missing")
		}
		return nil
	})
	if err != nil {
		return domain.NewStoreError("ping", err)
	}
	return nil
}

func lookup(tx *bolt.Tx, key domain.IdentityKey) (*identityRecord, error) {
	internalID := key.Value
	switch key.Kind {
	case domain.KeyInternalID:
	case domain.KeyProviderUserID:
		id := tx.Bucket(providerBucket).Get([]byte(key.Value))
		if id == nil {
			return nil, nil
		}
		internalID = string(id)
	default:
		return nil, fmt.Errorf("%w: unknown identity key %q", domain.ErrInvalidInput, key.Kind)
	}
	if internalID == "" {
		return nil, nil
	}

	var rec identityRecord
	found, err := getJSON(tx.Bucket(identitiesBucket), []byte(internalID), &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

// storeErr leaves caller errors alone and wraps everything else.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	return domain.NewStoreError(op, err)
}
