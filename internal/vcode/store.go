// Package vcode stores short-lived out-of-band verification codes keyed
// by the contact identifier they were sent to.  Codes die by TTL expiry
// or by being overwritten with a newer one; there is no delete; a
// pending code stays valid for repeated verification attempts until its
// time runs out.
package vcode

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the code lifetime used when the caller passes ttl <= 0.
const DefaultTTL = 300 * time.Second

// ErrNotFound is returned by Get when no code is pending for the
// identifier (never issued, expired, or evicted).
var ErrNotFound = errors.New("verification code not found")

// Store is the cache contract the authorizer and the issuing handler
// share.
type Store interface {
	Put(ctx context.Context, identifier, code string, ttl time.Duration) error
	Get(ctx context.Context, identifier string) (string, error)
}

// RedisStore keeps codes in Redis so all server instances see them.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore returns a Store over the given client.  Keys are
// namespaced under "vcode:".
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "vcode:"}
}

func (s *RedisStore) Put(ctx context.Context, identifier, code string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return s.rdb.Set(ctx, s.prefix+identifier, code, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+identifier).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

type memoryEntry struct {
	code    string
	expires time.Time
}

// MemoryStore is the in-process fallback used when Redis is unreachable
// at startup, and the store the tests drive with a simulated clock.
// Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]memoryEntry
	now func() time.Time
}

// NewMemoryStore returns an empty in-memory store on the real clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]memoryEntry), now: time.Now}
}

// NewMemoryStoreAt returns a store reading time from now; tests advance
// it to simulate TTL expiry.
func NewMemoryStoreAt(now func() time.Time) *MemoryStore {
	return &MemoryStore{m: make(map[string]memoryEntry), now: now}
}

func (s *MemoryStore) Put(_ context.Context, identifier, code string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[identifier] = memoryEntry{code: code, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, identifier string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[identifier]
	if !ok {
		return "", ErrNotFound
	}
	if s.now().After(e.expires) {
		delete(s.m, identifier)
		return "", ErrNotFound
	}
	return e.code, nil
}
