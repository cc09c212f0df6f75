package scopedraft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps drafts in Redis so sessions survive process restarts.
// Keys expire with the session TTL; an expired draft is simply an abandoned
// one.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ DraftStore = (*RedisStore)(nil)

// NewRedisStore creates a draft store on the given Redis client. A
// non-positive ttl defaults to one hour.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func draftKey(sessionID string) string {
	return "scopedraft:" + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Draft, bool, error) {
	data, err := s.rdb.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("get draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, false, fmt.Errorf("decode draft: %w", err)
	}
	return d, true, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.rdb.Set(ctx, draftKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
