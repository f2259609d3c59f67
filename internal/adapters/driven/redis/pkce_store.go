package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PKCEStore = (*PKCEStore)(nil)

const pkcePrefix = KeyPrefix + "pkce:"

// PKCEStore keeps in-flight attempts as JSON strings with a key TTL.
// Consume swaps the value for a marker that keeps the remaining TTL, so a
// used state stays taken until it would have expired. Redis expiry does
// the garbage collection.
type PKCEStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewPKCEStore creates a Redis-backed PKCE store.
func NewPKCEStore(client redis.UniversalClient, ttl time.Duration) *PKCEStore {
	if ttl <= 0 {
		ttl = domain.DefaultPKCETTL
	}
	return &PKCEStore{client: client, ttl: ttl, now: time.Now}
}

const consumedMarker = "consumed"

// consumeScript returns the stored entry and leaves the marker in its place.
var consumeScript = redis.NewScript(`
	local v = redis.call("get", KEYS[1])
	if not v or v == ARGV[1] then
		return false
	end
	local ttl = redis.call("pttl", KEYS[1])
	if ttl > 0 then
		redis.call("set", KEYS[1], ARGV[1], "PX", ttl)
	else
		redis.call("del", KEYS[1])
	end
	return v
`)

// Save writes the entry with a TTL matching its expiry. SET NX refuses a
// state that is already present, live or consumed.
func (s *PKCEStore) Save(ctx context.Context, entry *domain.PKCEEntry) error {
	now := s.now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = entry.CreatedAt.Add(s.ttl)
	}

	ttl := entry.ExpiresAt.Sub(now)
	if ttl <= 0 {
		// Already expired; Consume would discard it anyway.
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal pkce entry: %w", err)
	}

	ok, err := s.client.SetNX(ctx, pkcePrefix+entry.State, data, ttl).Result()
	if err != nil {
		return domain.NewStoreError("save pkce state", err)
	}
	if !ok {
		return domain.ErrStateRegistered
	}
	return nil
}

// Consume fetches the entry and marks it used in one script call.
func (s *PKCEStore) Consume(ctx context.Context, state string) (*domain.PKCEEntry, error) {
	data, err := consumeScript.Run(ctx, s.client, []string{pkcePrefix + state}, consumedMarker).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStoreError("consume pkce state", err)
	}

	var entry domain.PKCEEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("unmarshal pkce entry: %w", err)
	}
	if entry.ExpiredAt(s.now()) {
		return nil, nil
	}
	return &entry, nil
}

// Cleanup is a no-op: Redis expires keys on its own.
func (s *PKCEStore) Cleanup(ctx context.Context) (int64, error) {
	return 0, nil
}
