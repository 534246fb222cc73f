// Package redis provides a Redis-backed embedding cache. Query embeddings
// are deterministic per model, so sharing them across processes saves the
// round-trip to the embedding service.
package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string        // Redis server address (e.g. "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for entries (0 means no expiration)
}

// Cache implements embedding.Cache over a Redis client. Vectors are stored
// as float32 little-endian blobs.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a Redis-backed embedding cache.
func New(config *Config) *Cache {
	if config == nil {
		config = &Config{
			Addr:   "localhost:6379",
			Prefix: "lexrag:embedding:",
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return &Cache{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

// Get returns the cached vector for key, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis cache get: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("redis cache get: blob length %d not multiple of 4", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}

// Set stores the vector under key.
func (c *Cache) Set(ctx context.Context, key string, vector []float32) error {
	raw := make([]byte, 4*len(vector))
	for i, f := range vector {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
