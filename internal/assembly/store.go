package assembly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/angelmondragon/coffeepos-backend/pkg/redis"
)

// ErrNoSession is returned by Store.Load when the staff member has nothing in
// progress.
var ErrNoSession = errors.New("assembly session not found")

// Store persists sessions between requests.
type Store interface {
	Load(ctx context.Context, staffID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, staffID string) error
}

type redisBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AssemblyKey(staffID string) string
}

// RedisStore keeps each session as one JSON document under the staff member's
// key. Every save refreshes the TTL, so abandoned sessions expire on their own.
type RedisStore struct {
	client redisBackend
	ttl    time.Duration
}

// NewRedisStore builds a store with the given session lifetime.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("assembly ttl must be positive")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context, staffID string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.client.AssemblyKey(staffID))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode assembly session: %w", err)
	}
	return &session, nil
}

func (r *RedisStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode assembly session: %w", err)
	}
	return r.client.Set(ctx, r.client.AssemblyKey(session.StaffID), payload, r.ttl)
}

func (r *RedisStore) Delete(ctx context.Context, staffID string) error {
	return r.client.Del(ctx, r.client.AssemblyKey(staffID))
}
