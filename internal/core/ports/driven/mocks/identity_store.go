package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Ensure MockIdentityStore implements IdentityStore
var _ driven.IdentityStore = (*MockIdentityStore)(nil)

// MockIdentityStore is an in-memory IdentityStore.
// Returned identities are copies, so callers cannot mutate stored state.
type MockIdentityStore struct {
	mu         sync.RWMutex
	identities map[string]*domain.Identity // internal id -> identity
	byProvider map[string]string           // provider user id -> internal id

	// Err, when set, is returned by every operation.
	Err error
}

// NewMockIdentityStore creates a new MockIdentityStore
func NewMockIdentityStore() *MockIdentityStore {
	return &MockIdentityStore{
		identities: make(map[string]*domain.Identity),
		byProvider: make(map[string]string),
	}
}

// Put seeds an identity (for test setup).
func (m *MockIdentityStore) Put(identity *domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cloneIdentity(identity)
	m.identities[c.InternalID] = c
	if c.ProviderUserID != "" {
		m.byProvider[c.ProviderUserID] = c.InternalID
	}
}

// Count returns the number of stored identities.
func (m *MockIdentityStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities)
}

func (m *MockIdentityStore) GetByProviderUserID(ctx context.Context, providerUserID string) (*domain.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byProvider[providerUserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneIdentity(m.identities[id]), nil
}

func (m *MockIdentityStore) GetByInternalID(ctx context.Context, internalID string) (*domain.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	identity, ok := m.identities[internalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneIdentity(identity), nil
}

func (m *MockIdentityStore) UpsertCredential(ctx context.Context, upsert domain.CredentialUpsert) (*domain.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	credential := &domain.Credential{
		EncryptedToken: append([]byte(nil), upsert.EncryptedToken...),
		ExpiresAt:      upsert.ExpiresAt,
	}

	if id, ok := m.byProvider[upsert.ProviderUserID]; ok {
		identity := m.identities[id]
		identity.ProviderURN = upsert.ProviderURN
		identity.Credential = credential
		identity.UpdatedAt = upsert.Now
		return cloneIdentity(identity), nil
	}

	identity := &domain.Identity{
		InternalID:     upsert.OnInsert.InternalID,
		ProviderUserID: upsert.ProviderUserID,
		ProviderURN:    upsert.ProviderURN,
		DisplayName:    upsert.OnInsert.DisplayName,
		Credential:     credential,
		Drafts:         []domain.Draft{},
		Posts:          []domain.PostRecord{},
		CreatedAt:      upsert.Now,
		UpdatedAt:      upsert.Now,
	}
	m.identities[identity.InternalID] = identity
	m.byProvider[identity.ProviderUserID] = identity.InternalID
	return cloneIdentity(identity), nil
}

func (m *MockIdentityStore) AppendPost(ctx context.Context, key domain.IdentityKey, post domain.PostRecord) (bool, error) {
	return m.mutate(key, func(identity *domain.Identity) {
		identity.Posts = append(identity.Posts, post)
	})
}

func (m *MockIdentityStore) AppendDraft(ctx context.Context, key domain.IdentityKey, draft domain.Draft) (bool, error) {
	return m.mutate(key, func(identity *domain.Identity) {
		draft.Tags = append([]string(nil), draft.Tags...)
		identity.Drafts = append(identity.Drafts, draft)
	})
}

func (m *MockIdentityStore) MarkWelcomePosted(ctx context.Context, key domain.IdentityKey, at time.Time) (bool, error) {
	return m.mutate(key, func(identity *domain.Identity) {
		identity.WelcomePostedAt = &at
	})
}

func (m *MockIdentityStore) ListWelcomeCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Identity
	for _, identity := range m.identities {
		if identity.WelcomePostedAt == nil && identity.HasUsableCredential(now) {
			out = append(out, cloneIdentity(identity))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].InternalID < out[j].InternalID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockIdentityStore) Ping(ctx context.Context) error {
	return m.Err
}

func (m *MockIdentityStore) mutate(key domain.IdentityKey, fn func(*domain.Identity)) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := key.Value
	if key.Kind == domain.KeyProviderUserID {
		var ok bool
		if id, ok = m.byProvider[key.Value]; !ok {
			return false, nil
		}
	}
	identity, ok := m.identities[id]
	if !ok {
		return false, nil
	}
	fn(identity)
	return true, nil
}

func cloneIdentity(in *domain.Identity) *domain.Identity {
	out := *in
	if in.Credential != nil {
		c := *in.Credential
		c.EncryptedToken = append([]byte(nil), in.Credential.EncryptedToken...)
		out.Credential = &c
	}
	if in.WelcomePostedAt != nil {
		at := *in.WelcomePostedAt
		out.WelcomePostedAt = &at
	}
	out.Drafts = make([]domain.Draft, len(in.Drafts))
	for i, d := range in.Drafts {
		d.Tags = append([]string(nil), d.Tags...)
		out.Drafts[i] = d
	}
	out.Posts = append([]domain.PostRecord{}, in.Posts...)
	return &out
}
