package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driving"
)

// Ensure draftService implements DraftService
var _ driving.DraftService = (*draftService)(nil)

// draftService implements the DraftService interface
type draftService struct {
	identities driven.IdentityStore
	policy     *bluemonday.Policy
	now        func() time.Time
}

// NewDraftService creates a new DraftService
func NewDraftService(identities driven.IdentityStore) driving.DraftService {
	return &draftService{
		identities: identities,
		policy:     bluemonday.StrictPolicy(),
		now:        time.Now,
	}
}

// Add appends a draft to the identity. Markup is stripped from the content.
func (s *draftService) Add(ctx context.Context, req driving.AddDraftRequest) (*domain.Draft, error) {
	if !req.Key.Valid() {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	content := s.sanitize(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = s.sanitize(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	draft := domain.Draft{
		ID:        uuid.NewString(),
		Content:   content,
		Tags:      tags,
		CreatedAt: s.now(),
	}

	matched, err := s.identities.AppendDraft(ctx, req.Key, draft)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.ErrNotFound
	}
	return &draft, nil
}

// List returns drafts in insertion order.
func (s *draftService) List(ctx context.Context, key domain.IdentityKey) ([]domain.Draft, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	identity, err := lookupIdentity(ctx, s.identities, key)
	if err != nil {
		return nil, err
	}
	if identity.Drafts == nil {
		return []domain.Draft{}, nil
	}
	return identity.Drafts, nil
}

// sanitize reduces s to plain text. StrictPolicy escapes entities, which
// are turned back into characters since drafts are never rendered as HTML.
func (s *draftService) sanitize(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
