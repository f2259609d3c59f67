package driven

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockgen -source=social_provider.go -destination=mocks/social_provider.go -package=mocks

// SocialProvider is the downstream social API the broker acts against.
// Every call is bounded by the client timeout.
type SocialProvider interface {
	// AuthorizationURL builds the provider consent URL for a state and
	// S256 code challenge. No network call is made.
	AuthorizationURL(state, codeChallenge string) string

	// RedirectURI returns the registered callback URL.
	RedirectURI() string

	// ExchangeCode exchanges an authorization code and PKCE verifier for
	// a bearer token.
	ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) (*OAuthToken, error)

	// FetchIdentity returns the member the token was issued for.
	FetchIdentity(ctx context.Context, accessToken string) (*ProviderIdentity, error)

	// PublishContent publishes text as authorURN with public visibility.
	PublishContent(ctx context.Context, accessToken, authorURN, text string) (*PublishResult, error)
}

// OAuthToken is the token endpoint response.
type OAuthToken struct {
	AccessToken string
	ExpiresIn   int
	Scope       string
}

// ProviderIdentity is the authenticated member.
type ProviderIdentity struct {
	SubjectID string
	Name      string
	Email     string
}

// PublishResult is the provider response to a publish call.
// Raw is the response body verbatim.
type PublishResult struct {
	PostID string
	Status int
	Raw    json.RawMessage
}

// RemoteError is a non-success provider response.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.Status, e.Body)
}
