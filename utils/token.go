package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenBlacklist remembers revoked token ids until the token would have expired anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Purge()
}

var blacklist TokenBlacklist = NewMemoryBlacklist()

func SetBlacklist(b TokenBlacklist) {
	blacklist = b
}

// RevokeToken blacklists the token described by claims.
func RevokeToken(ctx context.Context, claims *CustomClaims) error {
	until := time.Now().Add(jwtTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return blacklist.Revoke(ctx, claims.ID, until)
}

func IsTokenRevoked(ctx context.Context, jti string) bool {
	revoked, err := blacklist.IsRevoked(ctx, jti)
	if err != nil {
		ErrorLogger.Errorf("token blacklist lookup: %v", err)
		return false
	}
	return revoked
}

func PurgeRevokedTokens() {
	blacklist.Purge()
}

type memoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryBlacklist() TokenBlacklist {
	return &memoryBlacklist{tokens: make(map[string]time.Time)}
}

func (m *memoryBlacklist) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[jti] = until
	return nil
}

func (m *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expiry, exists := m.tokens[jti]
	return exists && time.Now().Before(expiry), nil
}

func (m *memoryBlacklist) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for jti, expiry := range m.tokens {
		if now.After(expiry) {
			delete(m.tokens, jti)
		}
	}
}

type redisBlacklist struct {
	client *redis.Client
}

// NewRedisBlacklist shares revocations between instances. Keys expire on their own.
func NewRedisBlacklist(client *redis.Client) TokenBlacklist {
	return &redisBlacklist{client: client}
}

func (r *redisBlacklist) key(jti string) string {
	return "revoked_token:" + jti
}

func (r *redisBlacklist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(jti), 1, ttl).Err()
}

func (r *redisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisBlacklist) Purge() {}
