package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound means no refresh token record exists for the key. Any
// other error from the store is a backend failure, not an absence.
var ErrTokenNotFound = errors.New("refresh token not found")

// TokenStore keeps one active refresh token per session, keyed by the
// owning user and the token's jti.
type TokenStore interface {
	Put(ctx context.Context, userID, jti, signedToken string, ttl time.Duration) error
	Get(ctx context.Context, userID, jti string) (string, error)
	Delete(ctx context.Context, userID, jti string) error
}

// Compile-time check
var _ TokenStore = (*redisTokenStore)(nil)

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

// refreshTokenKey is deliberately unprefixed so the record layout matches
// what the refresh endpoint reconstructs from presented-token claims.
func refreshTokenKey(userID, jti string) string {
	return userID + ":" + jti
}

func (s *redisTokenStore) Put(ctx context.Context, userID, jti, signedToken string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshTokenKey(userID, jti), signedToken, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token in redis: %w", err)
	}
	return nil
}

func (s *redisTokenStore) Get(ctx context.Context, userID, jti string) (string, error) {
	value, err := s.client.Get(ctx, refreshTokenKey(userID, jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to get refresh token from redis: %w", err)
	}
	return value, nil
}

func (s *redisTokenStore) Delete(ctx context.Context, userID, jti string) error {
	if err := s.client.Del(ctx, refreshTokenKey(userID, jti)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token from redis: %w", err)
	}
	return nil
}
