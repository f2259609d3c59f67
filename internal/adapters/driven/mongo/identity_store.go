package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IdentityStore = (*IdentityStore)(nil)

type identityDoc struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	InternalID      string        `bson:"internal_id"`
	ProviderUserID  string        `bson:"provider_user_id"`
	ProviderURN     string        `bson:"provider_urn"`
	DisplayName     string        `bson:"display_name"`
	Token           []byte        `bson:"token,omitempty"`
	TokenExpiresAt  *time.Time    `bson:"token_expires_at,omitempty"`
	Drafts          []draftDoc    `bson:"drafts"`
	Posts           []postDoc     `bson:"posts"`
	WelcomePostedAt *time.Time    `bson:"welcome_posted_at"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}

type draftDoc struct {
	ID        string    `bson:"id"`
	Content   string    `bson:"content"`
	Tags      []string  `bson:"tags"`
	CreatedAt time.Time `bson:"created_at"`
}

type postDoc struct {
	ProviderPostID string    `bson:"post_id"`
	Text           string    `bson:"text"`
	PostedAt       time.Time `bson:"posted_at"`
}

func (d *identityDoc) toDomain() *domain.Identity {
	identity := &domain.Identity{
		InternalID:     d.InternalID,
		ProviderUserID: d.ProviderUserID,
		ProviderURN:    d.ProviderURN,
		DisplayName:    d.DisplayName,
		Drafts:         make([]domain.Draft, 0, len(d.Drafts)),
		Posts:          make([]domain.PostRecord, 0, len(d.Posts)),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	for _, dr := range d.Drafts {
		tags := dr.Tags
		if tags == nil {
			tags = []string{}
		}
		identity.Drafts = append(identity.Drafts, domain.Draft{
			ID: dr.ID, Content: dr.Content, Tags: tags, CreatedAt: dr.CreatedAt.UTC(),
		})
	}
	for _, p := range d.Posts {
		identity.Posts = append(identity.Posts, domain.PostRecord{
			ProviderPostID: p.ProviderPostID, Text: p.Text, PostedAt: p.PostedAt.UTC(),
		})
	}
	if len(d.Token) > 0 && d.TokenExpiresAt != nil {
		identity.Credential = &domain.Credential{
			EncryptedToken: d.Token,
			ExpiresAt:      d.TokenExpiresAt.UTC(),
		}
	}
	if d.WelcomePostedAt != nil {
		t := d.WelcomePostedAt.UTC()
		identity.WelcomePostedAt = &t
	}
	return identity
}

// IdentityStore implements driven.IdentityStore with one document per
// identity. History lives in embedded arrays updated with $push.
type IdentityStore struct {
	coll *mongo.Collection
}

// NewIdentityStore creates a new IdentityStore
func NewIdentityStore(db *DB) *IdentityStore {
	return &IdentityStore{coll: db.db.Collection(identitiesCollection)}
}

func keyFilter(key domain.IdentityKey) (bson.D, error) {
	switch key.Kind {
	case domain.KeyProviderUserID:
		return bson.D{{Key: "provider_user_id", Value: key.Value}}, nil
	case domain.KeyInternalID:
		return bson.D{{Key: "internal_id", Value: key.Value}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown identity key %q", domain.ErrInvalidInput, key.Kind)
	}
}

// GetByProviderUserID retrieves an identity by provider subject id.
func (s *IdentityStore) GetByProviderUserID(ctx context.Context, providerUserID string) (*domain.Identity, error) {
	return s.get(ctx, domain.ByProviderUserID(providerUserID))
}

// GetByInternalID retrieves an identity by internal id.
func (s *IdentityStore) GetByInternalID(ctx context.Context, internalID string) (*domain.Identity, error) {
	return s.get(ctx, domain.ByInternalID(internalID))
}

func (s *IdentityStore) get(ctx context.Context, key domain.IdentityKey) (*domain.Identity, error) {
	filter, err := keyFilter(key)
	if err != nil {
		return nil, err
	}

	var doc identityDoc
	err = s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("get identity", err)
	}
	return doc.toDomain(), nil
}

// UpsertCredential applies $set to the credential fields and $setOnInsert
// to the create-only ones in a single findAndModify.
func (s *IdentityStore) UpsertCredential(ctx context.Context, upsert domain.CredentialUpsert) (*domain.Identity, error) {
	filter := bson.D{{Key: "provider_user_id", Value: upsert.ProviderUserID}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "provider_urn", Value: upsert.ProviderURN},
			{Key: "token", Value: upsert.EncryptedToken},
			{Key: "token_expires_at", Value: upsert.ExpiresAt},
			{Key: "updated_at", Value: upsert.Now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "internal_id", Value: upsert.OnInsert.InternalID},
			{Key: "display_name", Value: upsert.OnInsert.DisplayName},
			{Key: "drafts", Value: bson.A{}},
			{Key: "posts", Value: bson.A{}},
			{Key: "welcome_posted_at", Value: nil},
			{Key: "created_at", Value: upsert.Now},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc identityDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Either a concurrent upsert for the same member won the insert, in
		// which case the retry takes the update path, or the internal id is
		// already bound to someone else.
		err = s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: internal id %s belongs to another member", domain.ErrInvalidInput, upsert.OnInsert.InternalID)
		}
	}
	if err != nil {
		return nil, domain.NewStoreError("upsert credential", err)
	}
	return doc.toDomain(), nil
}

// AppendPost pushes a post record.
func (s *IdentityStore) AppendPost(ctx context.Context, key domain.IdentityKey, post domain.PostRecord) (bool, error) {
	return s.update(ctx, "append post", key, bson.D{{Key: "$push", Value: bson.D{{Key: "posts", Value: postDoc{
		ProviderPostID: post.ProviderPostID,
		Text:           post.Text,
		PostedAt:       post.PostedAt,
	}}}}})
}

// AppendDraft pushes a draft.
func (s *IdentityStore) AppendDraft(ctx context.Context, key domain.IdentityKey, draft domain.Draft) (bool, error) {
	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}
	return s.update(ctx, "append draft", key, bson.D{{Key: "$push", Value: bson.D{{Key: "drafts", Value: draftDoc{
		ID:        draft.ID,
		Content:   draft.Content,
		Tags:      tags,
		CreatedAt: draft.CreatedAt,
	}}}}})
}

// MarkWelcomePosted sets welcome_posted_at.
func (s *IdentityStore) MarkWelcomePosted(ctx context.Context, key domain.IdentityKey, at time.Time) (bool, error) {
	return s.update(ctx, "mark welcome posted", key, bson.D{{Key: "$set", Value: bson.D{{Key: "welcome_posted_at", Value: at}}}})
}

func (s *IdentityStore) update(ctx context.Context, op string, key domain.IdentityKey, update bson.D) (bool, error) {
	filter, err := keyFilter(key)
	if err != nil {
		return false, err
	}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, domain.NewStoreError(op, err)
	}
	return res.MatchedCount > 0, nil
}

// ListWelcomeCandidates returns identities with an unexpired token still
// awaiting the default post, oldest first. History is not loaded.
func (s *IdentityStore) ListWelcomeCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Identity, error) {
	filter := bson.D{
		{Key: "token", Value: bson.D{{Key: "$exists", Value: true}}},
		{Key: "token_expires_at", Value: bson.D{{Key: "$gt", Value: now}}},
		{Key: "welcome_posted_at", Value: nil},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "internal_id", Value: 1}}).
		SetProjection(bson.D{{Key: "drafts", Value: 0}, {Key: "posts", Value: 0}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewStoreError("list welcome candidates", err)
	}
	var docs []identityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewStoreError("list welcome candidates", err)
	}

	identities := make([]*domain.Identity, 0, len(docs))
	for i := range docs {
		identities = append(identities, docs[i].toDomain())
	}
	return identities, nil
}

// Ping checks if the database is reachable
func (s *IdentityStore) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, nil); err != nil {
		return domain.NewStoreError("ping", err)
	}
	return nil
}
