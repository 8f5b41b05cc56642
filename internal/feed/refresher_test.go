package feed

import (
	"context"
	"testing"
	"time"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, error) {
	value, ok := c.entries[key]
	if !ok {
		return "", ErrMiss
	}
	return value, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func seed(t *testing.T, s *storage.InMemoryStorage, title string, status models.PostStatus) {
	t.Helper()
	_, err := s.AddPost(context.Background(), models.Post{
		Title:    title,
		Content:  "content",
		Status:   status,
		AuthorId: "u1",
		Like:     "[]",
	})
	require.NoError(t, err)
}

func TestRefreshMaterializesActivePosts(t *testing.T) {
	s := storage.NewInMemoryStorage()
	seed(t, s, "public", models.StatusActive)
	seed(t, s, "draft", models.StatusInactive)

	cache := newMapCache()
	r := NewRefresher(s, cache)

	require.NoError(t, r.Refresh(context.Background()))
	require.Contains(t, cache.entries, "feed:recent")

	page := r.Recent(context.Background())
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "public", page.Posts[0].Title)
}

func TestRecentServesStaleCopyUntilNextTick(t *testing.T) {
	s := storage.NewInMemoryStorage()
	seed(t, s, "first", models.StatusActive)

	cache := newMapCache()
	r := NewRefresher(s, cache)
	require.NoError(t, r.Refresh(context.Background()))

	// a write after the tick is invisible until the next refresh
	seed(t, s, "second", models.StatusActive)
	page := r.Recent(context.Background())
	assert.Len(t, page.Posts, 1)

	require.NoError(t, r.Refresh(context.Background()))
	page = r.Recent(context.Background())
	assert.Len(t, page.Posts, 2)
}

func TestRecentFallsBackToStoreOnMiss(t *testing.T) {
	s := storage.NewInMemoryStorage()
	seed(t, s, "public", models.StatusActive)

	r := NewRefresher(s, newMapCache())
	page := r.Recent(context.Background())
	assert.Len(t, page.Posts, 1)
}
