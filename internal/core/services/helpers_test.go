package services

import (
	"sync"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven/mocks"
)

var testEpoch = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// fakeClock is a settable clock shared between services and mocks.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// connectedIdentity returns an identity holding a mock-encrypted token.
func connectedIdentity(providerUserID, token string, expiresAt time.Time) *domain.Identity {
	blob, _ := mocks.NewMockSecretCodec().Encrypt(token)
	return &domain.Identity{
		InternalID:     "internal-" + providerUserID,
		ProviderUserID: providerUserID,
		ProviderURN:    domain.ProviderURN(providerUserID),
		Credential: &domain.Credential{
			EncryptedToken: blob,
			ExpiresAt:      expiresAt,
		},
		CreatedAt: testEpoch,
		UpdatedAt: testEpoch,
	}
}
