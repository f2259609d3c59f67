package services

import (
	"context"
	"fmt"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driving"
)

// Ensure identityService implements IdentityService
var _ driving.IdentityService = (*identityService)(nil)

type identityService struct {
	identities driven.IdentityStore
	now        func() time.Time
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(identities driven.IdentityStore) driving.IdentityService {
	return &identityService{identities: identities, now: time.Now}
}

// Get returns the identity status without token material.
func (s *identityService) Get(ctx context.Context, key domain.IdentityKey) (*domain.IdentitySummary, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	identity, err := lookupIdentity(ctx, s.identities, key)
	if err != nil {
		return nil, err
	}
	return identity.ToSummary(s.now()), nil
}
