package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-catalog/internal/utils"
)

// TokenStore hands out one-time upload tokens backed by Redis. A token is
// created with SETNX and a TTL, and consumed exactly once; expired or
// already-used tokens are rejected.
type TokenStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{
		Client: client,
		TTL:    ttl,
	}
}

func tokenKey(token string) string {
	return "upload_token:" + token
}

// Issue creates a fresh upload token that stays valid for the store's TTL.
func (t *TokenStore) Issue() (string, error) {
	token := utils.NewID()
	ok, err := t.Client.SetNX(context.Background(), tokenKey(token), "pending", t.TTL).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		// uuid collision, practically unreachable
		return t.Issue()
	}
	return token, nil
}

// Consume invalidates the token and reports whether it was still valid.
// A second Consume of the same token returns false.
func (t *TokenStore) Consume(token string) (bool, error) {
	ctx := context.Background()
	key := tokenKey(token)

	_, err := t.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	deleted, err := t.Client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
