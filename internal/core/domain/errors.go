package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested identity was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a required input is missing or empty
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the API caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenInvalid indicates the API caller token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired indicates the API caller token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidOrExpiredState indicates the PKCE state was never issued,
	// was already consumed, or is past its TTL. The cases are deliberately
	// indistinguishable.
	ErrInvalidOrExpiredState = errors.New("PKCE state not found or expired")

	// ErrStateRegistered indicates a PKCE state is already known to the
	// store, live or consumed.
	ErrStateRegistered = fmt.Errorf("%w: state already registered", ErrInvalidInput)

	// ErrTokenExpiredOrMissing indicates the stored provider credential
	// cannot be used; the member must re-authorize.
	ErrTokenExpiredOrMissing = errors.New("provider token expired or missing")

	// ErrDecryption indicates a stored token could not be decrypted
	// (corrupted blob or key mismatch)
	ErrDecryption = errors.New("failed to decrypt token")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	// Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrProviderAuthorization indicates the member denied consent or the
	// provider rejected the authorization request
	ErrProviderAuthorization = errors.New("provider authorization error")

	// ErrTokenExchangeFailed indicates the provider rejected the code exchange
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrIdentityFetchFailed indicates the provider identity call failed
	ErrIdentityFetchFailed = errors.New("identity fetch failed")

	// ErrDownstreamPublish indicates the provider rejected a publish call
	ErrDownstreamPublish = errors.New("downstream publish error")
)

// AuthorizationError is returned when the provider redirects back with an
// error instead of an authorization code.
type AuthorizationError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *AuthorizationError) Error() string {
	if e.Description != "" {
		return "LinkedIn OAuth error: " + e.Code + " - " + e.Description
	}
	return "LinkedIn OAuth error: " + e.Code
}

// Is reports whether target is ErrProviderAuthorization.
func (e *AuthorizationError) Is(target error) bool {
	return target == ErrProviderAuthorization
}

// ProviderOp names the downstream call that failed.
type ProviderOp string

const (
	ProviderOpExchange ProviderOp = "exchange"
	ProviderOpIdentity ProviderOp = "identity"
	ProviderOpPublish  ProviderOp = "publish"
)

// ProviderError carries the downstream status and body of a rejected
// provider call. Status is zero when the call never produced a response
// (timeout, connection refused).
type ProviderError struct {
	Op     ProviderOp
	Status int
	Body   string
	Err    error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.kind(), e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.kind(), e.Err)
	default:
		return e.kind().Error()
	}
}

// Unwrap exposes the underlying transport error, if any.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is maps the failed operation onto its sentinel.
func (e *ProviderError) Is(target error) bool {
	return target == e.kind()
}

// Transient reports whether the call failed without a provider response.
func (e *ProviderError) Transient() bool {
	return e.Status == 0
}

func (e *ProviderError) kind() error {
	switch e.Op {
	case ProviderOpExchange:
		return ErrTokenExchangeFailed
	case ProviderOpIdentity:
		return ErrIdentityFetchFailed
	default:
		return ErrDownstreamPublish
	}
}

// StoreError wraps a backend failure so callers can tell "store down"
// apart from "not found".
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err for the named store operation.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
