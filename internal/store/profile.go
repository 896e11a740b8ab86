package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/harrylevesque/navshell/internal/models"
)

// ProfileStore maps session tokens to user profiles. Tokens are never kept
// verbatim; stores key profiles by TokenFingerprint.
type ProfileStore interface {
	Lookup(ctx context.Context, token string) (*models.Profile, error)
	Put(ctx context.Context, token string, p models.Profile) error
}

// TokenFingerprint is the hex BLAKE2b-256 digest of a token.
func TokenFingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]models.Profile)}
}

func (s *MemoryProfileStore) Lookup(_ context.Context, token string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[TokenFingerprint(token)]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (s *MemoryProfileStore) Put(_ context.Context, token string, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[TokenFingerprint(token)] = p
	return nil
}

type RedisProfileStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisProfileStore(client redis.UniversalClient, prefix string) *RedisProfileStore {
	return &RedisProfileStore{client: client, prefix: prefix}
}

func (s *RedisProfileStore) Lookup(ctx context.Context, token string) (*models.Profile, error) {
	data, err := s.client.Get(ctx, s.prefix+TokenFingerprint(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (s *RedisProfileStore) Put(ctx context.Context, token string, p models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+TokenFingerprint(token), data, 0).Err(); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}
