package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driving"
)

// Ensure oauthService implements OAuthService
var _ driving.OAuthService = (*oauthService)(nil)

// CallbackSuccessMessage is returned to the member after a completed flow.
const CallbackSuccessMessage = "LinkedIn connected successfully"

const (
	stateBytes     = 32
	verifierLength = 64
)

// OAuthServiceConfig holds configuration for the OAuth service.
type OAuthServiceConfig struct {
	// Provider builds consent URLs and performs the token exchange.
	Provider driven.SocialProvider

	// StateStore holds in-flight state/verifier pairs.
	StateStore driven.PKCEStore

	// IdentityStore persists the resulting credential.
	IdentityStore driven.IdentityStore

	// Codec encrypts bearer tokens before they reach the store.
	Codec driven.SecretCodec

	Metrics driven.MetricsRecorder
	Logger  *slog.Logger

	// StateTTL bounds the authorization attempt (default: 10m).
	StateTTL time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// oauthService implements the OAuthService interface.
type oauthService struct {
	provider   driven.SocialProvider
	stateStore driven.PKCEStore
	identities driven.IdentityStore
	codec      driven.SecretCodec
	metrics    driven.MetricsRecorder
	logger     *slog.Logger
	stateTTL   time.Duration
	now        func() time.Time
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(cfg OAuthServiceConfig) driving.OAuthService {
	s := &oauthService{
		provider:   cfg.Provider,
		stateStore: cfg.StateStore,
		identities: cfg.IdentityStore,
		codec:      cfg.Codec,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		stateTTL:   cfg.StateTTL,
		now:        cfg.Now,
	}
	if s.metrics == nil {
		s.metrics = driven.NopMetrics{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.stateTTL <= 0 {
		s.stateTTL = domain.DefaultPKCETTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Authorize starts an OAuth authorization flow.
// It generates PKCE credentials, stores state, and returns the authorization URL.
func (s *oauthService) Authorize(ctx context.Context, req driving.AuthorizeRequest) (*driving.AuthorizeResponse, error) {
	internalID, err := s.resolveInternalID(ctx, strings.TrimSpace(req.InternalID))
	if err != nil {
		return nil, err
	}

	// Generate state (CSRF protection)
	state, err := generateRandomString(stateBytes * 2)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	// Generate PKCE code verifier and challenge
	codeVerifier, err := generateRandomString(verifierLength)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}
	codeChallenge := generateCodeChallenge(codeVerifier)

	now := s.now()
	entry := &domain.PKCEEntry{
		State:        state,
		CodeVerifier: codeVerifier,
		InternalID:   internalID,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.stateTTL),
	}
	if err := s.stateStore.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("save pkce state: %w", err)
	}

	return &driving.AuthorizeResponse{
		AuthorizationURL: s.provider.AuthorizationURL(state, codeChallenge),
		State:            state,
		InternalID:       internalID,
		ExpiresAt:        entry.ExpiresAt,
	}, nil
}

// resolveInternalID reuses a known internal id or assigns a fresh one.
func (s *oauthService) resolveInternalID(ctx context.Context, requested string) (string, error) {
	if requested == "" {
		return uuid.NewString(), nil
	}
	_, err := s.identities.GetByInternalID(ctx, requested)
	switch {
	case err == nil:
		return requested, nil
	case errors.Is(err, domain.ErrNotFound):
		return uuid.NewString(), nil
	default:
		return "", fmt.Errorf("lookup identity: %w", err)
	}
}

// Callback handles the OAuth callback from the provider.
// It consumes state, exchanges the code and stores the encrypted credential.
func (s *oauthService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	resp, err := s.callback(ctx, req)
	s.metrics.RecordCallback(callbackOutcome(err))
	return resp, err
}

func (s *oauthService) callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	// Check for error from provider
	if req.Error != "" {
		return nil, &domain.AuthorizationError{
			Code:        req.Error,
			Description: req.ErrorDescription,
		}
	}
	if req.Code == "" || req.State == "" {
		return nil, fmt.Errorf("%w: missing code or state", domain.ErrInvalidInput)
	}

	// Validate and consume state (single-use)
	entry, err := s.stateStore.Consume(ctx, req.State)
	if err != nil {
		return nil, fmt.Errorf("consume pkce state: %w", err)
	}
	if entry == nil || entry.ExpiredAt(s.now()) {
		return nil, domain.ErrInvalidOrExpiredState
	}

	token, err := s.provider.ExchangeCode(ctx, req.Code, s.provider.RedirectURI(), entry.CodeVerifier)
	if err != nil {
		return nil, providerError(domain.ProviderOpExchange, err)
	}
	if token.AccessToken == "" {
		return nil, &domain.ProviderError{Op: domain.ProviderOpExchange, Err: errors.New("no access token in response")}
	}

	member, err := s.provider.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, providerError(domain.ProviderOpIdentity, err)
	}
	if member.SubjectID == "" {
		return nil, &domain.ProviderError{Op: domain.ProviderOpIdentity, Err: errors.New("no subject in userinfo response")}
	}

	encrypted, err := s.codec.Encrypt(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt token: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(token.ExpiresIn) * time.Second)

	defaults := domain.IdentityDefaults{
		InternalID:  entry.InternalID,
		DisplayName: entry.DisplayName,
	}
	if defaults.InternalID == "" {
		defaults.InternalID = uuid.NewString()
	}
	if defaults.DisplayName == "" {
		defaults.DisplayName = member.Name
	}

	identity, err := s.identities.UpsertCredential(ctx, domain.CredentialUpsert{
		ProviderUserID: member.SubjectID,
		ProviderURN:    domain.ProviderURN(member.SubjectID),
		EncryptedToken: encrypted,
		ExpiresAt:      expiresAt,
		Now:            now,
		OnInsert:       defaults,
	})
	if err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	s.logger.Info("linkedin identity connected",
		"internal_id", identity.InternalID,
		"provider_user_id", identity.ProviderUserID,
		"expires_at", expiresAt,
	)

	return &driving.CallbackResponse{
		Message:        CallbackSuccessMessage,
		InternalID:     identity.InternalID,
		ProviderUserID: identity.ProviderUserID,
		ProviderURN:    identity.ProviderURN,
		ExpiresIn:      token.ExpiresIn,
		ExpiresAt:      expiresAt,
	}, nil
}

// RegisterState stores a client-generated state/verifier pair.
func (s *oauthService) RegisterState(ctx context.Context, req driving.RegisterStateRequest) error {
	if strings.TrimSpace(req.State) == "" || strings.TrimSpace(req.CodeVerifier) == "" {
		return fmt.Errorf("%w: state and code_verifier are required", domain.ErrInvalidInput)
	}
	now := s.now()
	entry := &domain.PKCEEntry{
		State:        req.State,
		CodeVerifier: req.CodeVerifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.stateTTL),
	}
	if err := s.stateStore.Save(ctx, entry); err != nil {
		return fmt.Errorf("save pkce state: %w", err)
	}
	return nil
}

// providerError converts a SocialProvider failure into a typed domain error.
func providerError(op domain.ProviderOp, err error) error {
	var remote *driven.RemoteError
	if errors.As(err, &remote) {
		return &domain.ProviderError{Op: op, Status: remote.Status, Body: remote.Body}
	}
	return &domain.ProviderError{Op: op, Err: err}
}

func callbackOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrProviderAuthorization):
		return "denied"
	case errors.Is(err, domain.ErrInvalidInput):
		return "bad_request"
	case errors.Is(err, domain.ErrInvalidOrExpiredState):
		return "invalid_state"
	case errors.Is(err, domain.ErrTokenExchangeFailed):
		return "exchange_failed"
	case errors.Is(err, domain.ErrIdentityFetchFailed):
		return "identity_failed"
	default:
		return "error"
	}
}

// generateRandomString generates a cryptographically secure random string.
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// generateCodeChallenge creates a PKCE code challenge from a verifier (S256 method).
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
