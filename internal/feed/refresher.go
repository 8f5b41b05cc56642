// Package feed keeps a materialized page of the public feed in a cache and
// re-fetches it on a fixed interval. The interval bounds staleness, nothing
// more: a write becomes visible on the next tick, with no ordering guarantee
// beyond "eventually a more recent page".
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// RecentSize is how many posts the materialized page holds. The list handlers
// default to the same size, so a default request and the cached copy agree.
const RecentSize = 10

const (
	recentKey = "feed:recent"
	cacheTTL  = 5 * time.Minute
)

// ErrMiss reports an absent cache entry.
var ErrMiss = errors.New("feed cache miss")

// Cache is the small key-value surface the refresher writes through.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisUrl string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: redisUrl})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return value, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Refresher materializes the first page of active posts into the cache every
// 30 seconds.
type Refresher struct {
	storage storage.Storage
	cache   Cache
	cron    *cron.Cron
}

func NewRefresher(s storage.Storage, c Cache) *Refresher {
	return &Refresher{storage: s, cache: c, cron: cron.New()}
}

func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc("@every 30s", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Refresh(ctx); err != nil {
			log.Printf("feed: refresh: %v", err)
		}
	}); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Refresher) Stop() {
	r.cron.Stop()
}

// Refresh re-fetches the recent page and overwrites the cached copy.
func (r *Refresher) Refresh(ctx context.Context) error {
	page, err := r.storage.ListPosts(ctx, storage.Filter{Status: models.StatusActive}, 1, RecentSize)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, recentKey, string(encoded), cacheTTL)
}

// Recent serves the cached page when it has one and falls back to the store
// otherwise. A failed fallback degrades to an empty page like any other feed
// read.
func (r *Refresher) Recent(ctx context.Context) models.PostsPage {
	if raw, err := r.cache.Get(ctx, recentKey); err == nil {
		var page models.PostsPage
		if err := json.Unmarshal([]byte(raw), &page); err == nil {
			return page
		}
	}

	page, err := r.storage.ListPosts(ctx, storage.Filter{Status: models.StatusActive}, 1, RecentSize)
	if err != nil {
		log.Printf("feed: recent fallback: %v", err)
		return models.PostsPage{Posts: []models.Post{}}
	}
	return page
}
