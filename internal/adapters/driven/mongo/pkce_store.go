package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PKCEStore = (*PKCEStore)(nil)

type pkceDoc struct {
	State        string    `bson:"_id"`
	CodeVerifier string    `bson:"code_verifier"`
	InternalID   string    `bson:"internal_id"`
	DisplayName  string    `bson:"display_name"`
	CreatedAt    time.Time `bson:"created_at"`
	ExpiresAt    time.Time `bson:"expires_at"`
	Consumed     bool      `bson:"consumed,omitempty"`
}

// PKCEStore keys attempts by state in the _id field.
type PKCEStore struct {
	coll *mongo.Collection
	ttl  time.Duration
	now  func() time.Time
}

// NewPKCEStore creates a Mongo-backed PKCE store.
func NewPKCEStore(db *DB, ttl time.Duration) *PKCEStore {
	if ttl <= 0 {
		ttl = domain.DefaultPKCETTL
	}
	return &PKCEStore{coll: db.db.Collection(pkceCollection), ttl: ttl, now: time.Now}
}

// Save inserts a new entry. The _id index refuses a known state.
func (s *PKCEStore) Save(ctx context.Context, entry *domain.PKCEEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = entry.CreatedAt.Add(s.ttl)
	}

	_, err := s.coll.InsertOne(ctx, pkceDoc{
		State:        entry.State,
		CodeVerifier: entry.CodeVerifier,
		InternalID:   entry.InternalID,
		DisplayName:  entry.DisplayName,
		CreatedAt:    entry.CreatedAt,
		ExpiresAt:    entry.ExpiresAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrStateRegistered
	}
	if err != nil {
		return domain.NewStoreError("save pkce state", err)
	}
	return nil
}

// Consume flags the entry consumed with FindOneAndUpdate and returns it.
// When nothing matches, an expired document is deleted.
func (s *PKCEStore) Consume(ctx context.Context, state string) (*domain.PKCEEntry, error) {
	now := s.now()
	filter := bson.D{
		{Key: "_id", Value: state},
		{Key: "consumed", Value: bson.D{{Key: "$ne", Value: true}}},
		{Key: "expires_at", Value: bson.D{{Key: "$gte", Value: now}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "consumed", Value: true}}}}

	var doc pkceDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		expired := bson.D{
			{Key: "_id", Value: state},
			{Key: "expires_at", Value: bson.D{{Key: "$lt", Value: now}}},
		}
		if _, err := s.coll.DeleteOne(ctx, expired); err != nil {
			return nil, domain.NewStoreError("consume pkce state", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("consume pkce state", err)
	}

	return &domain.PKCEEntry{
		State:        doc.State,
		CodeVerifier: doc.CodeVerifier,
		InternalID:   doc.InternalID,
		DisplayName:  doc.DisplayName,
		CreatedAt:    doc.CreatedAt.UTC(),
		ExpiresAt:    doc.ExpiresAt.UTC(),
	}, nil
}

// Cleanup deletes expired entries the TTL monitor has not reached yet.
func (s *PKCEStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lt", Value: s.now()}}}})
	if err != nil {
		return 0, domain.NewStoreError("cleanup pkce states", err)
	}
	return res.DeletedCount, nil
}
