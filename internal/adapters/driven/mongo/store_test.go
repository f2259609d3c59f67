package mongo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

var epoch = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// setupTestDB connects to TEST_MONGO_URI and uses a throwaway database.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, uri, "broker_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, db.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = db.db.Drop(ctx)
		_ = db.Close(ctx)
	})
	return db
}

func upsert(sub, internalID string, at time.Time) domain.CredentialUpsert {
	return domain.CredentialUpsert{
		ProviderUserID: sub,
		ProviderURN:    domain.ProviderURN(sub),
		EncryptedToken: []byte("enc:" + sub),
		ExpiresAt:      at.Add(time.Hour),
		Now:            at,
		OnInsert:       domain.IdentityDefaults{InternalID: internalID, DisplayName: "Jane"},
	}
}

func TestKeyFilter(t *testing.T) {
	f, err := keyFilter(domain.ByInternalID("i-1"))
	require.NoError(t, err)
	assert.Equal(t, "internal_id", f[0].Key)

	_, err = keyFilter(domain.IdentityKey{Kind: "email", Value: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIdentityStore_Upsert(t *testing.T) {
	store := NewIdentityStore(setupTestDB(t))
	ctx := context.Background()

	created, err := store.UpsertCredential(ctx, upsert("abc", "i-1", epoch))
	require.NoError(t, err)
	assert.Equal(t, "i-1", created.InternalID)
	assert.Equal(t, "Jane", created.DisplayName)
	assert.Empty(t, created.Posts)

	_, err = store.AppendPost(ctx, domain.ByProviderUserID("abc"), domain.PostRecord{ProviderPostID: "p1", PostedAt: epoch})
	require.NoError(t, err)

	later := epoch.Add(time.Hour)
	updated, err := store.UpsertCredential(ctx, upsert("abc", "i-2", later))
	require.NoError(t, err)
	assert.Equal(t, "i-1", updated.InternalID)
	assert.Equal(t, epoch, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Len(t, updated.Posts, 1)

	_, err = store.UpsertCredential(ctx, upsert("xyz", "i-1", later))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIdentityStore_ConcurrentAppends(t *testing.T) {
	store := NewIdentityStore(setupTestDB(t))
	ctx := context.Background()
	_, err := store.UpsertCredential(ctx, upsert("abc", "i-1", epoch))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AppendDraft(ctx, domain.ByInternalID("i-1"), domain.Draft{ID: fmt.Sprintf("d%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	identity, err := store.GetByInternalID(ctx, "i-1")
	require.NoError(t, err)
	assert.Len(t, identity.Drafts, 25)

	matched, err := store.AppendPost(ctx, domain.ByProviderUserID("nobody"), domain.PostRecord{})
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestIdentityStore_WelcomeCandidates(t *testing.T) {
	store := NewIdentityStore(setupTestDB(t))
	ctx := context.Background()
	for i, sub := range []string{"a", "b"} {
		_, err := store.UpsertCredential(ctx, upsert(sub, "i-"+sub, epoch.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := store.MarkWelcomePosted(ctx, domain.ByProviderUserID("a"), epoch)
	require.NoError(t, err)

	candidates, err := store.ListWelcomeCandidates(ctx, epoch, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b", candidates[0].ProviderUserID)

	expired, err := store.ListWelcomeCandidates(ctx, epoch.Add(3*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestPKCEStore_ConsumeOnce(t *testing.T) {
	store := NewPKCEStore(setupTestDB(t), 0)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.PKCEEntry{State: "s1", CodeVerifier: "v1"}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := store.Consume(ctx, "s1")
			assert.NoError(t, err)
			if entry != nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestPKCEStore_SaveRefusesKnownState(t *testing.T) {
	store := NewPKCEStore(setupTestDB(t), 0)
	ctx := context.Background()
	now := time.Now().UTC()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &domain.PKCEEntry{State: "s1", CodeVerifier: "v1"}))
	err := store.Save(ctx, &domain.PKCEEntry{State: "s1", CodeVerifier: "other-verifier"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	entry, err := store.Consume(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "v1", entry.CodeVerifier)

	err = store.Save(ctx, &domain.PKCEEntry{State: "s1", CodeVerifier: "other-verifier"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	again, err := store.Consume(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, again, "consumed state stays consumed")
}

func TestPKCEStore_ExpiredEntryIsRemovedOnConsume(t *testing.T) {
	store := NewPKCEStore(setupTestDB(t), 0)
	ctx := context.Background()
	now := time.Now().UTC()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &domain.PKCEEntry{State: "s1", CodeVerifier: "v1"}))
	now = now.Add(11 * time.Minute)

	entry, err := store.Consume(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, entry)

	removed, err := store.Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPKCEStore_Cleanup(t *testing.T) {
	store := NewPKCEStore(setupTestDB(t), 0)
	ctx := context.Background()
	now := time.Now().UTC()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &domain.PKCEEntry{State: "s1", CodeVerifier: "v1"}))
	now = now.Add(11 * time.Minute)

	removed, err := store.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
