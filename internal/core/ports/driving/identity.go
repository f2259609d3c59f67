package driving

import (
	"context"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

// IdentityService exposes read-only identity status.
type IdentityService interface {
	Get(ctx context.Context, key domain.IdentityKey) (*domain.IdentitySummary, error)
}
