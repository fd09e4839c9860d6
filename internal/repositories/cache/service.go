package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"iprofit/internal/models"
	keys "iprofit/internal/utils/cache"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
	stats  *Stats
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
		stats:  NewStats(),
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the cached value into dest and reports whether the key existed.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			s.stats.Miss(key)
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	s.stats.Hit(key)
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// DeletePattern removes every key matching pattern using SCAN.
func (s *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return s.Delete(ctx, batch...)
}

// User caching
func (s *CacheService) CacheUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}
	for _, key := range userKeys(user) {
		if err := s.Set(ctx, key, user); err != nil {
			return err
		}
	}
	return nil
}

func (s *CacheService) GetUser(ctx context.Context, key string) (*models.User, error) {
	var user models.User
	found, err := s.Get(ctx, key, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return &user, nil
}

// InvalidateUser drops every key for the user, including email and phone lookups.
func (s *CacheService) InvalidateUser(ctx context.Context, userID uint) error {
	idKey := keys.GenerateKey(keys.EntityUser, keys.KeyID, userID)
	user, err := s.GetUser(ctx, idKey)
	if err != nil {
		return s.Delete(ctx, idKey)
	}
	return s.Delete(ctx, userKeys(user)...)
}

func userKeys(user *models.User) []string {
	out := []string{
		keys.GenerateKey(keys.EntityUser, keys.KeyID, user.ID),
		keys.GenerateKey(keys.EntityUser, keys.KeyEmail, strings.ToLower(user.Email)),
	}
	if user.Phone != "" {
		out = append(out, keys.GenerateKey(keys.EntityUser, keys.KeyPhone, user.Phone))
	}
	return out
}

// Stats returns the hit/miss counters.
func (s *CacheService) Stats() map[string]interface{} {
	return s.stats.Snapshot()
}

// FlushAll flushes all keys from the cache
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
