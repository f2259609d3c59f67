package driving

import (
	"context"
	"time"
)

// OAuthService drives the LinkedIn authorization-code flow with PKCE.
type OAuthService interface {
	// Authorize starts an authorization attempt.
	// Returns the provider URL to send the member to. The state and PKCE
	// verifier are stored for single-use validation during callback.
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResponse, error)

	// Callback handles the provider redirect.
	// It consumes the state, exchanges the code, fetches the member
	// identity and stores the encrypted credential.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)

	// RegisterState stores a state/verifier pair generated by the client.
	RegisterState(ctx context.Context, req RegisterStateRequest) error
}

// AuthorizeRequest represents a request to start an OAuth flow.
// @Description Request to start the LinkedIn authorization flow
type AuthorizeRequest struct {
	// DisplayName is an optional human hint recorded on the identity when
	// it is first created.
	DisplayName string `json:"display_name,omitempty" example:"Jane Doe"`

	// InternalID re-authorizes an existing identity. If empty or unknown a
	// new internal id is assigned.
	InternalID string `json:"internal_id,omitempty" example:"6f1c0a52-4c1e-4b59-9d0b-1a1b5c7de001"`
}

// AuthorizeResponse contains the authorization URL and state.
// @Description Response containing the LinkedIn authorization URL
type AuthorizeResponse struct {
	AuthorizationURL string    `json:"authorization_url" example:"https://www.linkedin.com/oauth/v2/authorization?client_id=..."`
	State            string    `json:"state" example:"9c4f..."`
	InternalID       string    `json:"internal_id" example:"6f1c0a52-4c1e-4b59-9d0b-1a1b5c7de001"`
	ExpiresAt        time.Time `json:"expires_at" example:"2026-01-15T10:10:00Z"`
}

// CallbackRequest represents the OAuth redirect query.
// @Description OAuth callback parameters from the LinkedIn redirect
type CallbackRequest struct {
	Code             string `json:"code" example:"AQT..."`
	State            string `json:"state" example:"9c4f..."`
	Error            string `json:"error,omitempty" example:"user_cancelled_authorize"`
	ErrorDescription string `json:"error_description,omitempty" example:"The user cancelled the authorization"`
}

// CallbackResponse contains the result of a successful callback.
// @Description Response after a successful LinkedIn authorization
type CallbackResponse struct {
	Message        string    `json:"message" example:"LinkedIn connected successfully"`
	InternalID     string    `json:"internal_id"`
	ProviderUserID string    `json:"linkedin_user_id" example:"42"`
	ProviderURN    string    `json:"linkedin_urn" example:"urn:li:person:42"`
	ExpiresIn      int       `json:"expires_in" example:"5184000"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// RegisterStateRequest stores an externally generated PKCE pair.
// @Description Externally generated state and code verifier
type RegisterStateRequest struct {
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier"`
}
