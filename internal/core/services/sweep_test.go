package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven/mocks"
)

func newTestSweep(t *testing.T, lock driven.DistributedLock) (*WelcomeSweep, *mocks.MockSocialProvider, *mocks.MockIdentityStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSocialProvider(ctrl)
	store := mocks.NewMockIdentityStore()
	clock := newFakeClock()
	sweep := NewWelcomeSweep(WelcomeSweepConfig{
		IdentityStore: store,
		Provider:      provider,
		Codec:         mocks.NewMockSecretCodec(),
		Lock:          lock,
		Now:           clock.Now,
		Concurrency:   2,
	})
	return sweep, provider, store
}

func TestWelcomeSweep_Tick(t *testing.T) {
	sweep, provider, store := newTestSweep(t, nil)

	store.Put(connectedIdentity("ok", "tok-ok", testEpoch.Add(time.Hour)))
	store.Put(connectedIdentity("expired", "tok-expired", testEpoch.Add(-time.Hour)))
	store.Put(connectedIdentity("rejected", "tok-rejected", testEpoch.Add(time.Hour)))
	done := connectedIdentity("done", "tok-done", testEpoch.Add(time.Hour))
	posted := testEpoch.Add(-time.Minute)
	done.WelcomePostedAt = &posted
	store.Put(done)
	store.Put(&domain.Identity{InternalID: "pending", CreatedAt: testEpoch})

	provider.EXPECT().
		PublishContent(gomock.Any(), "tok-ok", "urn:li:person:ok", DefaultWelcomeMessage).
		Return(&driven.PublishResult{PostID: "urn:li:share:1", Raw: json.RawMessage(`{"id":"urn:li:share:1"}`)}, nil)
	provider.EXPECT().
		PublishContent(gomock.Any(), "tok-rejected", "urn:li:person:rejected", DefaultWelcomeMessage).
		Return(nil, &driven.RemoteError{Status: 500, Body: "boom"})

	result := sweep.Tick(context.Background())
	assert.Equal(t, SweepResult{Eligible: 2, Published: 1, Failed: 1}, result)

	ok, err := store.GetByProviderUserID(context.Background(), "ok")
	require.NoError(t, err)
	require.NotNil(t, ok.WelcomePostedAt)
	require.Len(t, ok.Posts, 1)
	assert.Equal(t, DefaultWelcomeMessage, ok.Posts[0].Text)

	for _, id := range []string{"expired", "rejected"} {
		identity, err := store.GetByProviderUserID(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, identity.WelcomePostedAt, "%s stays eligible", id)
		assert.Empty(t, identity.Posts)
	}
}

func TestWelcomeSweep_SecondTickDoesNotRepost(t *testing.T) {
	sweep, provider, store := newTestSweep(t, nil)
	store.Put(connectedIdentity("ok", "tok", testEpoch.Add(time.Hour)))

	provider.EXPECT().
		PublishContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&driven.PublishResult{PostID: "p1", Raw: json.RawMessage(`{}`)}, nil).
		Times(1)

	first := sweep.Tick(context.Background())
	second := sweep.Tick(context.Background())

	assert.Equal(t, 1, first.Published)
	assert.Equal(t, 0, second.Eligible)
}

func TestWelcomeSweep_ExpiredBacklogDoesNotStarveFreshIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSocialProvider(ctrl)
	store := mocks.NewMockIdentityStore()
	sweep := NewWelcomeSweep(WelcomeSweepConfig{
		IdentityStore: store,
		Provider:      provider,
		Codec:         mocks.NewMockSecretCodec(),
		Now:           newFakeClock().Now,
		BatchSize:     2,
	})

	for i, id := range []string{"stale-a", "stale-b"} {
		stale := connectedIdentity(id, "tok-"+id, testEpoch.Add(-time.Hour))
		stale.CreatedAt = testEpoch.Add(-time.Duration(3-i) * time.Hour)
		store.Put(stale)
	}
	store.Put(connectedIdentity("fresh", "tok-fresh", testEpoch.Add(time.Hour)))

	provider.EXPECT().
		PublishContent(gomock.Any(), "tok-fresh", "urn:li:person:fresh", DefaultWelcomeMessage).
		Return(&driven.PublishResult{PostID: "urn:li:share:9", Raw: json.RawMessage(`{}`)}, nil).
		Times(1)

	for range 5 {
		sweep.Tick(context.Background())
	}

	fresh, err := store.GetByProviderUserID(context.Background(), "fresh")
	require.NoError(t, err)
	require.NotNil(t, fresh.WelcomePostedAt)
	require.Len(t, fresh.Posts, 1)
}

func TestWelcomeSweep_ExtendsLockDuringSlowTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSocialProvider(ctrl)
	store := mocks.NewMockIdentityStore()
	lock := mocks.NewMockDistributedLock()
	sweep := NewWelcomeSweep(WelcomeSweepConfig{
		IdentityStore: store,
		Provider:      provider,
		Codec:         mocks.NewMockSecretCodec(),
		Lock:          lock,
		Now:           newFakeClock().Now,
		LockTTL:       20 * time.Millisecond,
	})
	store.Put(connectedIdentity("slow", "tok", testEpoch.Add(time.Hour)))

	provider.EXPECT().
		PublishContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _, _ string) (*driven.PublishResult, error) {
			deadline := time.Now().Add(2 * time.Second)
			for lock.Extensions() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			return &driven.PublishResult{PostID: "p1", Raw: json.RawMessage(`{}`)}, nil
		})

	result := sweep.Tick(context.Background())
	assert.Equal(t, 1, result.Published)
	assert.GreaterOrEqual(t, lock.Extensions(), 2)
	assert.False(t, lock.IsHeld(sweepLockName))

	extended := lock.Extensions()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, extended, lock.Extensions(), "extension stops with the tick")
}

func TestWelcomeSweep_LockHeldElsewhere(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	lock.SetLockHeld(sweepLockName, time.Minute)
	sweep, _, store := newTestSweep(t, lock)
	store.Put(connectedIdentity("ok", "tok", testEpoch.Add(time.Hour)))

	result := sweep.Tick(context.Background())
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, result.Eligible)
}

func TestWelcomeSweep_LockReleased(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	sweep, _, _ := newTestSweep(t, lock)

	result := sweep.Tick(context.Background())
	assert.False(t, result.Skipped)
	assert.False(t, lock.IsHeld(sweepLockName))
	acquired, released := lock.Counts()
	assert.Equal(t, 1, acquired)
	assert.Equal(t, 1, released)
}

func TestWelcomeSweep_LockError(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	lock.AcquireFn = func(string, time.Duration) (bool, error) { return false, errors.New("redis down") }
	sweep, _, _ := newTestSweep(t, lock)

	assert.True(t, sweep.Tick(context.Background()).Skipped)
}

func TestWelcomeSweep_StoreError(t *testing.T) {
	sweep, _, store := newTestSweep(t, nil)
	store.Err = domain.NewStoreError("list", errors.New("down"))

	result := sweep.Tick(context.Background())
	assert.Equal(t, SweepResult{}, result)
	assert.NoError(t, sweep.Run(context.Background()))
}

func TestStateJanitor_Run(t *testing.T) {
	store := mocks.NewMockPKCEStore()
	clock := newFakeClock()
	store.Now = clock.Now
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.PKCEEntry{State: "old", CodeVerifier: "v"}))
	clock.Advance(domain.DefaultPKCETTL + time.Minute)
	require.NoError(t, store.Save(ctx, &domain.PKCEEntry{State: "fresh", CodeVerifier: "v"}))

	janitor := NewStateJanitor(store, nil, nil)
	require.NoError(t, janitor.Run(ctx))

	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("fresh")
	assert.True(t, ok)

	store.Err = errors.New("down")
	assert.Error(t, janitor.Run(ctx))
}
