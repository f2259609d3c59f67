package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driving"
)

// Ensure publishService implements PublishService
var _ driving.PublishService = (*publishService)(nil)

// PublishServiceConfig holds configuration for the publish service.
type PublishServiceConfig struct {
	Provider      driven.SocialProvider
	IdentityStore driven.IdentityStore
	Codec         driven.SecretCodec
	Metrics       driven.MetricsRecorder
	Logger        *slog.Logger
	Now           func() time.Time
}

type publishService struct {
	provider   driven.SocialProvider
	identities driven.IdentityStore
	codec      driven.SecretCodec
	metrics    driven.MetricsRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewPublishService creates a new publish service.
func NewPublishService(cfg PublishServiceConfig) driving.PublishService {
	s := &publishService{
		provider:   cfg.Provider,
		identities: cfg.IdentityStore,
		codec:      cfg.Codec,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if s.metrics == nil {
		s.metrics = driven.NopMetrics{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Publish posts text on the member's behalf and records it in the history.
// The history is only touched after the provider accepted the post.
func (s *publishService) Publish(ctx context.Context, req driving.PublishRequest) (*driving.PublishResponse, error) {
	resp, err := s.publish(ctx, req)
	s.metrics.RecordPublish(publishOutcome(err))
	return resp, err
}

func (s *publishService) publish(ctx context.Context, req driving.PublishRequest) (*driving.PublishResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	if !req.Key.Valid() {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	identity, err := lookupIdentity(ctx, s.identities, req.Key)
	if err != nil {
		return nil, err
	}

	result, err := publishAs(ctx, s.provider, s.codec, identity, req.Text, domain.TokenGuard{Now: s.now})
	if err != nil {
		return nil, err
	}

	if result.PostID != "" {
		record := domain.PostRecord{
			ProviderPostID: result.PostID,
			Text:           req.Text,
			PostedAt:       s.now(),
		}
		matched, err := s.identities.AppendPost(ctx, req.Key, record)
		switch {
		case err != nil:
			// The post is live; losing the history entry must not hide that.
			s.logger.Error("failed to record post",
				"identity", req.Key.String(),
				"post_id", result.PostID,
				"error", err,
			)
		case !matched:
			s.logger.Warn("identity disappeared before post was recorded",
				"identity", req.Key.String(),
				"post_id", result.PostID,
			)
		}
	}

	return &driving.PublishResponse{
		PostID:   result.PostID,
		Response: result.Raw,
	}, nil
}

// publishAs runs the token guard, decrypts the credential and publishes text
// as the identity. It never mutates the store.
func publishAs(
	ctx context.Context,
	provider driven.SocialProvider,
	codec driven.SecretCodec,
	identity *domain.Identity,
	text string,
	guard domain.TokenGuard,
) (*driven.PublishResult, error) {
	if !guard.IsValid(identity) {
		return nil, domain.ErrTokenExpiredOrMissing
	}
	if identity.ProviderURN == "" {
		return nil, fmt.Errorf("%w: missing provider urn", domain.ErrInvalidInput)
	}

	token, err := codec.Decrypt(identity.Credential.EncryptedToken)
	if err != nil {
		return nil, err
	}

	result, err := provider.PublishContent(ctx, token, identity.ProviderURN, text)
	if err != nil {
		return nil, providerError(domain.ProviderOpPublish, err)
	}
	return result, nil
}

// lookupIdentity resolves key against the store.
func lookupIdentity(ctx context.Context, store driven.IdentityStore, key domain.IdentityKey) (*domain.Identity, error) {
	switch key.Kind {
	case domain.KeyInternalID:
		return store.GetByInternalID(ctx, key.Value)
	case domain.KeyProviderUserID:
		return store.GetByProviderUserID(ctx, key.Value)
	default:
		return nil, fmt.Errorf("%w: unknown identity key %q", domain.ErrInvalidInput, key.Kind)
	}
}

func publishOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrTokenExpiredOrMissing):
		return "token_unusable"
	case errors.Is(err, domain.ErrDownstreamPublish):
		return "downstream_error"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "bad_request"
	default:
		return "error"
	}
}
