package driving

import (
	"context"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

// AuthService authenticates backend services calling the broker API.
type AuthService interface {
	// ValidateToken validates a caller bearer token and returns the auth context.
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// IssueToken mints a caller token for subject with the given scopes.
	IssueToken(ctx context.Context, subject string, scopes []string, ttl time.Duration) (string, error)
}
