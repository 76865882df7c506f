package utils

import (
	"CloudStash/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis cache client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Get reads a cached value.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set writes a cached value.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, string(data), expiration).Err()
}

// Delete removes a cache entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

const fileListCacheTTL = 2 * time.Minute

// FileListCache caches per-user dashboard file listings. Upload and
// delete invalidate the entry, so a stale list lives at most one TTL.
type FileListCache struct {
	cache Cache
}

// NewFileListCache builds a file list cache on top of a Cache.
func NewFileListCache(cache Cache) *FileListCache {
	return &FileListCache{cache: cache}
}

func fileListKey(userID uint64) string {
	return fmt.Sprintf("filelist:%d", userID)
}

// Get returns the cached file list for a user, if present.
func (c *FileListCache) Get(ctx context.Context, userID uint64) ([]model.File, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	var files []model.File
	if err := c.cache.Get(ctx, fileListKey(userID), &files); err != nil {
		return nil, false
	}
	return files, true
}

// Set stores a user's file list.
func (c *FileListCache) Set(ctx context.Context, userID uint64, files []model.File) {
	if c == nil || c.cache == nil {
		return
	}
	_ = c.cache.Set(ctx, fileListKey(userID), files, fileListCacheTTL)
}

// Invalidate drops a user's cached file list.
func (c *FileListCache) Invalidate(ctx context.Context, userID uint64) {
	if c == nil || c.cache == nil {
		return
	}
	_ = c.cache.Delete(ctx, fileListKey(userID))
}

// TokenStore records revoked session tokens until they expire on their
// own. The entry only needs to outlive the token.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore builds a token revocation store.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

// Revoke marks a token ID as revoked for the given remaining lifetime.
func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s == nil || s.client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		// 已过期的 token 不需要再登记
		return nil
	}
	return s.client.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, jti string) bool {
	if s == nil || s.client == nil || jti == "" {
		return false
	}
	val, err := s.client.Get(ctx, revokedKey(jti)).Result()
	return err == nil && val == "1"
}
