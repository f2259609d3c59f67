package driven

import "github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"

// AuthAdapter signs and verifies the bearer tokens presented by backend
// services calling the broker API.
type AuthAdapter interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
