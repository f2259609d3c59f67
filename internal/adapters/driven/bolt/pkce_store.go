package bolt

import (
	"context"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PKCEStore = (*PKCEStore)(nil)

// pkceRecord is the stored form; a consumed record stays until Cleanup.
type pkceRecord struct {
	domain.PKCEEntry
	Consumed bool `json:"consumed,omitempty"`
}

// PKCEStore keeps in-flight attempts in the pkce_states bucket.
type PKCEStore struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewPKCEStore creates a bbolt-backed PKCE store.
func NewPKCEStore(db *DB, ttl time.Duration) *PKCEStore {
	if ttl <= 0 {
		ttl = domain.DefaultPKCETTL
	}
	return &PKCEStore{db: db, ttl: ttl, now: time.Now}
}

// Save stores a new entry. A state already in the bucket is refused.
func (s *PKCEStore) Save(ctx context.Context, entry *domain.PKCEEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = entry.CreatedAt.Add(s.ttl)
	}

	err := s.db.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pkceBucket)
		if b.Get([]byte(entry.State)) != nil {
			return domain.ErrStateRegistered
		}
		return putJSON(b, []byte(entry.State), pkceRecord{PKCEEntry: *entry})
	})
	if errors.Is(err, domain.ErrStateRegistered) {
		return err
	}
	if err != nil {
		return domain.NewStoreError("save pkce state", err)
	}
	return nil
}

// Consume reads the entry and marks it consumed in one write transaction.
// An expired entry is deleted instead.
func (s *PKCEStore) Consume(ctx context.Context, state string) (*domain.PKCEEntry, error) {
	now := s.now()
	var entry *domain.PKCEEntry
	err := s.db.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pkceBucket)
		var rec pkceRecord
		found, err := getJSON(b, []byte(state), &rec)
		if err != nil || !found {
			return err
		}
		if rec.ExpiredAt(now) {
			return b.Delete([]byte(state))
		}
		if rec.Consumed {
			return nil
		}
		rec.Consumed = true
		if err := putJSON(b, []byte(state), rec); err != nil {
			return err
		}
		entry = &rec.PKCEEntry
		return nil
	})
	if err != nil {
		return nil, domain.NewStoreError("consume pkce state", err)
	}
	return entry, nil
}

// Cleanup deletes every expired entry.
func (s *PKCEStore) Cleanup(ctx context.Context) (int64, error) {
	now := s.now()
	var removed int64
	err := s.db.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pkceBucket)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec pkceRecord
			if _, err := getJSON(b, k, &rec); err != nil {
				return err
			}
			if rec.ExpiredAt(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// bbolt forbids deleting while iterating with ForEach
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = int64(len(expired))
		return nil
	})
	if err != nil {
		return 0, domain.NewStoreError("cleanup pkce states", err)
	}
	return removed, nil
}
