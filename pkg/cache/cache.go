package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"shopsphere-web/internal/models"
)

const (
	catalogKey    = "storefront:catalog"
	sessionPrefix = "storefront:session:"
)

// RedisCache holds the fetched catalog and per-session controller state.
// A nil *RedisCache is valid and behaves as a cache miss everywhere, so
// the server keeps working when Redis is down.
type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
	sessionTTL time.Duration
	ctx        context.Context
}

func NewRedisCache() *RedisCache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisDB := 0
	if db := os.Getenv("REDIS_DB"); db != "" {
		if dbNum, err := strconv.Atoi(db); err == nil {
			redisDB = dbNum
		}
	}

	catalogTTLSeconds := 600 // 10 minutes default
	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			catalogTTLSeconds = t
		}
	}

	sessionTTLSeconds := 3600 // sessions outlive the catalog cache
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if t, err := strconv.Atoi(ttl); err == nil {
			sessionTTLSeconds = t
		}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v", err)
		return nil
	}
	opt.DB = redisDB

	client := redis.NewClient(opt)
	ctx := context.Background()

	if _, err = client.Ping(ctx).Result(); err != nil {
		log.Printf("Redis connection failed: %v", err)
		return nil
	}

	log.Printf("Redis connected successfully, DB: %d, catalog TTL: %ds, session TTL: %ds",
		redisDB, catalogTTLSeconds, sessionTTLSeconds)

	return &RedisCache{
		client:     client,
		catalogTTL: time.Duration(catalogTTLSeconds) * time.Second,
		sessionTTL: time.Duration(sessionTTLSeconds) * time.Second,
		ctx:        ctx,
	}
}

func (r *RedisCache) GetCatalog() ([]models.Product, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	val, err := r.client.Get(r.ctx, catalogKey).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %v", err)
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %v", err)
	}
	return products, nil
}

func (r *RedisCache) SetCatalog(products []models.Product) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("json marshal error: %v", err)
	}
	return r.client.Set(r.ctx, catalogKey, data, r.catalogTTL).Err()
}

func (r *RedisCache) GetSessionState(sessionID string) (*models.SearchState, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	val, err := r.client.Get(r.ctx, sessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil // No state yet
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %v", err)
	}

	var state models.SearchState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %v", err)
	}
	return &state, nil
}

func (r *RedisCache) SetSessionState(sessionID string, state *models.SearchState) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("json marshal error: %v", err)
	}
	return r.client.Set(r.ctx, sessionPrefix+sessionID, data, r.sessionTTL).Err()
}

func (r *RedisCache) DeleteSessionState(sessionID string) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}
	return r.client.Del(r.ctx, sessionPrefix+sessionID).Err()
}

func (r *RedisCache) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisCache) IsAvailable() bool {
	return r != nil && r.client != nil
}

func (r *RedisCache) GetStats() map[string]interface{} {
	if r == nil || r.client == nil {
		return map[string]interface{}{
			"status": "unavailable",
		}
	}

	info := r.client.Info(r.ctx, "memory").Val()
	return map[string]interface{}{
		"status":              "connected",
		"catalog_ttl_seconds": int(r.catalogTTL.Seconds()),
		"session_ttl_seconds": int(r.sessionTTL.Seconds()),
		"memory_info":         info,
	}
}

func (r *RedisCache) FlushCache() error {
	if r == nil || r.client == nil {
		return fmt.Errorf("redis client not available")
	}
	return r.client.FlushDB(r.ctx).Err()
}
