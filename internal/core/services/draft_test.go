package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven/mocks"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driving"
)

func TestDraftService_AddAndList(t *testing.T) {
	store := mocks.NewMockIdentityStore()
	store.Put(connectedIdentity("42", "tok", testEpoch.Add(time.Hour)))
	svc := NewDraftService(store)
	ctx := context.Background()
	key := domain.ByProviderUserID("42")

	first, err := svc.Add(ctx, driving.AddDraftRequest{Key: key, Content: "first", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = svc.Add(ctx, driving.AddDraftRequest{Key: domain.ByInternalID("internal-42"), Content: "second"})
	require.NoError(t, err)

	drafts, err := svc.List(ctx, key)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "first", drafts[0].Content)
	assert.Equal(t, []string{"a"}, drafts[0].Tags)
	assert.Equal(t, "second", drafts[1].Content)
}

func TestDraftService_Add_StripsMarkup(t *testing.T) {
	store := mocks.NewMockIdentityStore()
	store.Put(connectedIdentity("42", "tok", testEpoch.Add(time.Hour)))
	svc := NewDraftService(store)

	draft, err := svc.Add(context.Background(), driving.AddDraftRequest{
		Key:     domain.ByProviderUserID("42"),
		Content: `<b>Q&A</b> on <script>alert(1)</script>PKCE`,
		Tags:    []string{"<i>oauth</i>", "<br>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Q&A on PKCE", draft.Content)
	assert.Equal(t, []string{"oauth"}, draft.Tags)
}

func TestDraftService_Add_Errors(t *testing.T) {
	store := mocks.NewMockIdentityStore()
	store.Put(connectedIdentity("42", "tok", testEpoch.Add(time.Hour)))
	svc := NewDraftService(store)
	ctx := context.Background()

	_, err := svc.Add(ctx, driving.AddDraftRequest{Key: domain.ByProviderUserID("42"), Content: "<p></p>"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Add(ctx, driving.AddDraftRequest{Key: domain.ByProviderUserID("nobody"), Content: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.List(ctx, domain.ByProviderUserID("nobody"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDraftService_ConcurrentAddsAreNotLost(t *testing.T) {
	store := mocks.NewMockIdentityStore()
	store.Put(connectedIdentity("42", "tok", testEpoch.Add(time.Hour)))
	svc := NewDraftService(store)
	key := domain.ByProviderUserID("42")

	const n = 25
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(context.Background(), driving.AddDraftRequest{Key: key, Content: "draft"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	drafts, err := svc.List(context.Background(), key)
	require.NoError(t, err)
	assert.Len(t, drafts, n)
}

func TestIdentityService_Get(t *testing.T) {
	store := mocks.NewMockIdentityStore()
	identity := connectedIdentity("42", "tok", time.Now().Add(time.Hour))
	identity.Drafts = []domain.Draft{{ID: "d1"}}
	store.Put(identity)
	svc := NewIdentityService(store)

	summary, err := svc.Get(context.Background(), domain.ByProviderUserID("42"))
	require.NoError(t, err)
	assert.True(t, summary.Connected)
	assert.True(t, summary.TokenValid)
	assert.Equal(t, 1, summary.DraftCount)
	assert.Equal(t, "urn:li:person:42", summary.ProviderURN)

	_, err = svc.Get(context.Background(), domain.ByInternalID("missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), domain.ByInternalID(" "))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
