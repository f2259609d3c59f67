package domain

// AuthContext identifies the backend service calling the broker API
type AuthContext struct {
	Subject string   `json:"sub"`
	Scopes  []string `json:"scopes,omitempty"`
}

// HasScope reports whether the caller was granted scope.
// Callers without any scopes are treated as unrestricted.
func (a *AuthContext) HasScope(scope string) bool {
	if len(a.Scopes) == 0 {
		return true
	}
	for _, s := range a.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// API caller scopes
const (
	ScopeOAuth   = "oauth"
	ScopePublish = "publish"
	ScopeDrafts  = "drafts"
)

// TokenClaims represents the API caller JWT payload
type TokenClaims struct {
	Subject   string   `json:"sub"`
	Scopes    []string `json:"scopes,omitempty"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
}
