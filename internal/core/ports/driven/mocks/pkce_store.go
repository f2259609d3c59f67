package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Ensure MockPKCEStore implements PKCEStore
var _ driven.PKCEStore = (*MockPKCEStore)(nil)

// MockPKCEStore is an in-memory PKCEStore with single-use semantics.
type MockPKCEStore struct {
	mu       sync.Mutex
	entries  map[string]domain.PKCEEntry
	consumed map[string]time.Time // state -> expiry

	// Now overrides the clock used for expiry checks.
	Now func() time.Time
	// Err, when set, is returned by every operation.
	Err error
}

// NewMockPKCEStore creates a new MockPKCEStore
func NewMockPKCEStore() *MockPKCEStore {
	return &MockPKCEStore{
		entries:  make(map[string]domain.PKCEEntry),
		consumed: make(map[string]time.Time),
		Now:      time.Now,
	}
}

func (m *MockPKCEStore) Save(ctx context.Context, entry *domain.PKCEEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[entry.State]; ok {
		return domain.ErrStateRegistered
	}
	if _, ok := m.consumed[entry.State]; ok {
		return domain.ErrStateRegistered
	}

	e := *entry
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.Now()
	}
	if e.ExpiresAt.IsZero() {
		e.ExpiresAt = e.CreatedAt.Add(domain.DefaultPKCETTL)
	}
	m.entries[e.State] = e
	return nil
}

func (m *MockPKCEStore) Consume(ctx context.Context, state string) (*domain.PKCEEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	if expiry, ok := m.consumed[state]; ok {
		if now.After(expiry) {
			delete(m.consumed, state)
		}
		return nil, nil
	}
	e, ok := m.entries[state]
	if !ok {
		return nil, nil
	}
	delete(m.entries, state)
	if e.ExpiredAt(now) {
		return nil, nil
	}
	m.consumed[state] = e.ExpiresAt
	return &e, nil
}

func (m *MockPKCEStore) Cleanup(ctx context.Context) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	now := m.Now()
	for k, e := range m.entries {
		if e.ExpiredAt(now) {
			delete(m.entries, k)
			removed++
		}
	}
	for k, expiry := range m.consumed {
		if now.After(expiry) {
			delete(m.consumed, k)
			removed++
		}
	}
	return removed, nil
}

// Get returns a stored entry without consuming it (for test assertions).
func (m *MockPKCEStore) Get(state string) (domain.PKCEEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[state]
	return e, ok
}

// Len returns the number of live, unconsumed entries.
func (m *MockPKCEStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
