package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per key class
const (
	TTLListing     = 5 * time.Minute  // listing detail
	TTLListingPage = 1 * time.Minute  // public listing pages (churn with new posts)
	TTLUser        = 5 * time.Minute  // own profile (auth me)
	TTLStats       = 1 * time.Minute  // owner view stats (ClickHouse aggregates)
	TTLDefault     = 5 * time.Minute  // fallback
)

// Cache key prefixes
const (
	PrefixListing     = "lokalo:listing:"
	PrefixListingPage = "lokalo:listings:active:"
	PrefixUser        = "lokalo:user:"
)

// Service Redis cache service interface
type Service interface {
	// Generic operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Listing detail cache
	GetListing(ctx context.Context, listingID uint64) ([]byte, error)
	SetListing(ctx context.Context, listingID uint64, data interface{}) error
	InvalidateListing(ctx context.Context, listingID uint64) error

	// Public listing page cache
	GetListingPage(ctx context.Context, page, limit int) ([]byte, error)
	SetListingPage(ctx context.Context, page, limit int, data interface{}) error
	InvalidateListingPages(ctx context.Context) error

	// User profile cache
	GetUser(ctx context.Context, userID uint64) ([]byte, error)
	SetUser(ctx context.Context, userID uint64, data interface{}) error
	InvalidateUser(ctx context.Context, userID uint64) error

	// Utilities
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis-backed implementation; every method tolerates a nil
// client so the API keeps working without Redis.
type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis client is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads a cached value into dest
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores a value with a TTL
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists checks key presence
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// Listing detail cache
// ========================================

func (c *redisCache) listingKey(listingID uint64) string {
	return fmt.Sprintf("%s%d", PrefixListing, listingID)
}

func (c *redisCache) GetListing(ctx context.Context, listingID uint64) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.listingKey(listingID)).Bytes()
}

func (c *redisCache) SetListing(ctx context.Context, listingID uint64, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.listingKey(listingID), jsonData, TTLListing).Err()
}

func (c *redisCache) InvalidateListing(ctx context.Context, listingID uint64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.listingKey(listingID)).Err()
}

// ========================================
// Public listing page cache
// ========================================

func (c *redisCache) listingPageKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", PrefixListingPage, page, limit)
}

func (c *redisCache) GetListingPage(ctx context.Context, page, limit int) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.listingPageKey(page, limit)).Bytes()
}

func (c *redisCache) SetListingPage(ctx context.Context, page, limit int, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.listingPageKey(page, limit), jsonData, TTLListingPage).Err()
}

func (c *redisCache) InvalidateListingPages(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixListingPage+"*")
}

// ========================================
// User profile cache
// ========================================

func (c *redisCache) userKey(userID uint64) string {
	return fmt.Sprintf("%s%d", PrefixUser, userID)
}

func (c *redisCache) GetUser(ctx context.Context, userID uint64) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.userKey(userID)).Bytes()
}

func (c *redisCache) SetUser(ctx context.Context, userID uint64, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.userKey(userID), jsonData, TTLUser).Err()
}

func (c *redisCache) InvalidateUser(ctx context.Context, userID uint64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.userKey(userID)).Err()
}

// ========================================
// Internal utilities
// ========================================

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
