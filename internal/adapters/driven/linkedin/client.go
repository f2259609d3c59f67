// Package linkedin implements the social provider port against the
// LinkedIn OAuth2, OpenID userinfo and UGC posts APIs.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.SocialProvider = (*Client)(nil)

// Default endpoints.
const (
	DefaultAuthURL     = "https://www.linkedin.com/oauth/v2/authorization"
	DefaultTokenURL    = "https://www.linkedin.com/oauth/v2/accessToken"
	DefaultUserInfoURL = "https://api.linkedin.com/v2/userinfo"
	DefaultPostsURL    = "https://api.linkedin.com/v2/ugcPosts"

	defaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 1 << 20
)

// DefaultScopes are the scopes needed to identify the member and post as them.
var DefaultScopes = []string{"openid", "profile", "email", "w_member_social"}

// Config holds the registered application and endpoint overrides.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	AuthURL     string
	TokenURL    string
	UserInfoURL string
	PostsURL    string

	Timeout time.Duration
	Metrics driven.MetricsRecorder
}

// Client talks to LinkedIn. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	metrics    driven.MetricsRecorder
}

// NewClient creates a LinkedIn client, filling unset endpoints with the
// production defaults.
func NewClient(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if cfg.PostsURL == "" {
		cfg.PostsURL = DefaultPostsURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    metrics,
	}
}

// AuthorizationURL constructs the consent URL.
func (c *Client) AuthorizationURL(state, codeChallenge string) string {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {c.cfg.ClientID},
		"redirect_uri":          {c.cfg.RedirectURI},
		"state":                 {state},
		"scope":                 {strings.Join(c.cfg.Scopes, " ")},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	return c.cfg.AuthURL + "?" + params.Encode()
}

// RedirectURI returns the registered callback URL.
func (c *Client) RedirectURI() string {
	return c.cfg.RedirectURI
}

// ExchangeCode exchanges an authorization code and verifier for a token.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) (*driven.OAuthToken, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"code_verifier": {codeVerifier},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	_, body, err := c.do(req, "exchange", http.StatusOK)
	if err != nil {
		return nil, err
	}

	return &driven.OAuthToken{
		AccessToken: gjson.GetBytes(body, "access_token").String(),
		ExpiresIn:   int(gjson.GetBytes(body, "expires_in").Int()),
		Scope:       gjson.GetBytes(body, "scope").String(),
	}, nil
}

// FetchIdentity reads the OpenID userinfo for the token.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*driven.ProviderIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	_, body, err := c.do(req, "identity", http.StatusOK)
	if err != nil {
		return nil, err
	}

	return &driven.ProviderIdentity{
		SubjectID: gjson.GetBytes(body, "sub").String(),
		Name:      gjson.GetBytes(body, "name").String(),
		Email:     gjson.GetBytes(body, "email").String(),
	}, nil
}

// PublishContent creates a public text share authored by authorURN.
func (c *Client) PublishContent(ctx context.Context, accessToken, authorURN, text string) (*driven.PublishResult, error) {
	payload, err := json.Marshal(newShare(authorURN, text))
	if err != nil {
		return nil, fmt.Errorf("encode share: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.PostsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, body, err := c.do(req, "publish", 0)
	if err != nil {
		return nil, err
	}

	postID := gjson.GetBytes(body, "id").String()
	if postID == "" {
		postID = resp.Header.Get("X-Restli-Id")
	}

	raw := json.RawMessage(body)
	if !gjson.ValidBytes(body) {
		raw = json.RawMessage("{}")
	}

	return &driven.PublishResult{
		PostID: postID,
		Status: resp.StatusCode,
		Raw:    raw,
	}, nil
}

// do sends req and returns the body. With want == 0 any 2xx is accepted.
// Non-accepted statuses become *driven.RemoteError.
func (c *Client) do(req *http.Request, op string, want int) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordProviderLatency(op, time.Since(start))
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	ok := resp.StatusCode == want
	if want == 0 {
		ok = resp.StatusCode >= 200 && resp.StatusCode < 300
	}
	if !ok {
		return nil, nil, &driven.RemoteError{Status: resp.StatusCode, Body: string(body)}
	}
	return resp, body, nil
}
