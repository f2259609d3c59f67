package driving

import (
	"context"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

// DraftService manages per-identity drafts. Drafts are append-only.
type DraftService interface {
	Add(ctx context.Context, req AddDraftRequest) (*domain.Draft, error)
	List(ctx context.Context, key domain.IdentityKey) ([]domain.Draft, error)
}

// AddDraftRequest represents a new draft.
// @Description Draft to store for later publishing
type AddDraftRequest struct {
	Key     domain.IdentityKey `json:"-"`
	Content string             `json:"content" example:"Thoughts on PKCE"`
	Tags    []string           `json:"tags,omitempty" example:"security,oauth"`
}
