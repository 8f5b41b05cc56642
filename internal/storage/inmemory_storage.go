package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lekhoni/lekhoni/internal/models"
)

// InMemoryStorage keeps documents in process memory. It backs the dev mode
// and the test suite.
type InMemoryStorage struct {
	mutex        sync.RWMutex
	posts        map[models.PostID]models.Post
	postOrder    []models.PostID
	users        map[models.UserID]models.User
	usersByEmail map[string]models.UserID
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		posts:        make(map[models.PostID]models.Post),
		users:        make(map[models.UserID]models.User),
		usersByEmail: make(map[string]models.UserID),
	}
}

func (s *InMemoryStorage) AddPost(ctx context.Context, post models.Post) (models.PostID, error) {
	if post.AuthorId == "" {
		return "", models.ErrUnauthorized
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	post.Id = models.PostID(uuid.NewString())
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt
	s.posts[post.Id] = post
	s.postOrder = append(s.postOrder, post.Id)

	return post.Id, nil
}

func (s *InMemoryStorage) GetPost(ctx context.Context, postId models.PostID) (models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	post, ok := s.posts[postId]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	return post, nil
}

func (s *InMemoryStorage) UpdatePost(ctx context.Context, postId models.PostID, update models.PostUpdate) (models.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, ok := s.posts[postId]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}

	applyPostUpdate(&post, update)
	post.UpdatedAt = time.Now().UTC()
	s.posts[postId] = post
	return post, nil
}

func (s *InMemoryStorage) DeletePost(ctx context.Context, postId models.PostID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.posts[postId]; !ok {
		return models.ErrNotFound
	}
	delete(s.posts, postId)
	for i, id := range s.postOrder {
		if id == postId {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryStorage) ListPosts(ctx context.Context, filter Filter, page int, size int) (models.PostsPage, error) {
	if page < 1 || size < 1 || size > MaxPageSize {
		return models.PostsPage{}, models.ErrBadRequest
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// newest first
	matched := make([]models.Post, 0)
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		post := s.posts[s.postOrder[i]]
		if filter.AuthorId != "" && post.AuthorId != filter.AuthorId {
			continue
		}
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		matched = append(matched, post)
	}

	return postsPage(matched, page, size)
}

func postsPage(posts []models.Post, page int, size int) (models.PostsPage, error) {
	from := (page - 1) * size
	if from < 0 || from > len(posts) {
		return models.PostsPage{}, models.ErrBadRequest
	}
	to := from + size
	if to > len(posts) {
		to = len(posts)
	}

	result := models.PostsPage{
		Posts: append([]models.Post(nil), posts[from:to]...),
		Total: int64(len(posts)),
	}
	if to < len(posts) {
		result.NextPage = fmt.Sprint(page + 1)
	}
	return result, nil
}

func applyPostUpdate(post *models.Post, update models.PostUpdate) {
	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Content != nil {
		post.Content = *update.Content
	}
	if update.Status != nil {
		post.Status = *update.Status
	}
	if update.AuthorName != nil {
		post.AuthorName = *update.AuthorName
	}
	if update.ImageId != nil {
		post.ImageId = *update.ImageId
	}
	if update.Like != nil {
		post.Like = *update.Like
	}
	if update.Permissions != nil {
		post.Permissions = update.Permissions
	}
}

func (s *InMemoryStorage) AddUser(ctx context.Context, user models.User) (models.UserID, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, taken := s.usersByEmail[user.Email]; taken {
		return "", models.ErrEmailTaken
	}

	user.Id = models.UserID(uuid.NewString())
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.Id] = user
	s.usersByEmail[user.Email] = user.Id
	return user.Id, nil
}

func (s *InMemoryStorage) GetUser(ctx context.Context, userId models.UserID) (models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, ok := s.users[userId]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return user, nil
}

func (s *InMemoryStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	userId, ok := s.usersByEmail[email]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return s.users[userId], nil
}

func (s *InMemoryStorage) UpdateUser(ctx context.Context, userId models.UserID, update models.UserUpdate) (models.User, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user, ok := s.users[userId]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.SessionEpoch != nil {
		user.SessionEpoch = *update.SessionEpoch
	}
	s.users[userId] = user
	return user, nil
}

func (s *InMemoryStorage) DeleteUser(ctx context.Context, userId models.UserID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user, ok := s.users[userId]
	if !ok {
		return models.ErrNotFound
	}
	delete(s.usersByEmail, user.Email)
	delete(s.users, userId)
	return nil
}
