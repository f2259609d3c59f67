package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven/mocks"
)

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc := NewAuthService(mocks.NewMockAuthAdapter())
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, "agent", []string{domain.ScopePublish}, time.Hour)
	require.NoError(t, err)

	auth, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "agent", auth.Subject)
	assert.True(t, auth.HasScope(domain.ScopePublish))
	assert.False(t, auth.HasScope(domain.ScopeDrafts))
}

func TestAuthService_ValidateToken(t *testing.T) {
	adapter := mocks.NewMockAuthAdapter()
	svc := NewAuthService(adapter)
	ctx := context.Background()

	expired, _ := adapter.GenerateToken(&domain.TokenClaims{
		Subject:   "agent",
		IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})
	anonymous, _ := adapter.GenerateToken(&domain.TokenClaims{
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", domain.ErrTokenInvalid},
		{"garbage", "not-a-token", domain.ErrTokenInvalid},
		{"expired", expired, domain.ErrTokenExpired},
		{"no subject", anonymous, domain.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_IssueToken_Invalid(t *testing.T) {
	svc := NewAuthService(mocks.NewMockAuthAdapter())

	_, err := svc.IssueToken(context.Background(), " ", nil, time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.IssueToken(context.Background(), "agent", nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
