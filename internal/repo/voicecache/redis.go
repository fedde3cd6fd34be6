package voicecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	voiceKeyPrefix = "voice:"
	defaultTTL     = 24 * time.Hour
	opTimeout      = 2 * time.Second
)

// RedisStore shares cached audio across processes. Memory is bounded by TTL
// expiry rather than an entry count; the Store contract for drivers only
// requires that growth is bounded.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(key Key) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, voiceKeyPrefix+key.String()).Bytes()
	if err != nil {
		// redis.Nil and transport errors both read as a miss; the caller
		// just falls through to the synthesis backend.
		return nil, false
	}
	return val, true
}

func (s *RedisStore) Put(key Key, audio []byte) {
	if !key.Cacheable() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_ = s.client.Set(ctx, voiceKeyPrefix+key.String(), audio, s.ttl).Err()
}

func (s *RedisStore) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	keys, err := s.client.Keys(ctx, voiceKeyPrefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}
