package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/redis/go-redis/v9"
)

const cacheTTL = time.Hour

// CachedStorage puts a Redis read cache in front of a persistent Storage.
// Cache failures degrade to the persistent store, they are never surfaced.
type CachedStorage struct {
	client            *redis.Client
	persistentStorage Storage
}

func (s *CachedStorage) AddPost(ctx context.Context, post models.Post) (models.PostID, error) {
	postId, err := s.persistentStorage.AddPost(ctx, post)
	if err != nil {
		return postId, err
	}
	post.Id = postId
	s.store(ctx, post)
	return postId, nil
}

func (s *CachedStorage) GetPost(ctx context.Context, postId models.PostID) (models.Post, error) {
	if post := s.load(ctx, postId); post != nil {
		return *post, nil
	}
	post, err := s.persistentStorage.GetPost(ctx, postId)
	if err != nil {
		return post, err
	}
	s.store(ctx, post)
	return post, nil
}

func (s *CachedStorage) UpdatePost(ctx context.Context, postId models.PostID, update models.PostUpdate) (models.Post, error) {
	post, err := s.persistentStorage.UpdatePost(ctx, postId, update)
	if err != nil {
		return post, err
	}
	s.store(ctx, post)
	return post, nil
}

func (s *CachedStorage) DeletePost(ctx context.Context, postId models.PostID) error {
	if err := s.persistentStorage.DeletePost(ctx, postId); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.redisKey(postId)).Err(); err != nil {
		log.Printf("cache: delete %v: %v", postId, err)
	}
	return nil
}

func (s *CachedStorage) ListPosts(ctx context.Context, filter Filter, page int, size int) (models.PostsPage, error) {
	return s.persistentStorage.ListPosts(ctx, filter, page, size)
}

func (s *CachedStorage) store(ctx context.Context, post models.Post) {
	value, err := json.Marshal(post)
	if err != nil {
		log.Printf("cache: marshal %v: %v", post.Id, err)
		return
	}
	if err := s.client.Set(ctx, s.redisKey(post.Id), value, cacheTTL).Err(); err != nil {
		log.Printf("cache: store %v: %v", post.Id, err)
	}
}

func (s *CachedStorage) load(ctx context.Context, postId models.PostID) *models.Post {
	result, err := s.client.Get(ctx, s.redisKey(postId)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		log.Printf("cache: load %v: %v", postId, err)
		return nil
	}
	var post models.Post
	if err := json.Unmarshal([]byte(result), &post); err != nil {
		return nil
	}
	return &post
}

func (s *CachedStorage) redisKey(key models.PostID) string {
	// add a prefix not to collide with other data stored in the same redis
	return "postid:" + string(key)
}

func NewCachedStorage(redisUrl string, persistentStorage Storage) *CachedStorage {
	client := redis.NewClient(&redis.Options{Addr: redisUrl})
	return &CachedStorage{
		client:            client,
		persistentStorage: persistentStorage,
	}
}
