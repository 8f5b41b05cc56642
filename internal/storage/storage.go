package storage

import (
	"context"

	"github.com/lekhoni/lekhoni/internal/models"
)

// MaxPageSize bounds a single list call so a feed fetch can never pull the
// whole collection.
const MaxPageSize = 100

// Filter narrows a list call. Zero values match everything.
type Filter struct {
	AuthorId models.UserID
	Status   models.PostStatus
}

// Storage is the vendor-neutral document store the post service talks to.
// GetPost and UpdatePost return models.ErrNotFound when the document does not
// exist; every other failure is the backend's own error.
type Storage interface {
	AddPost(ctx context.Context, post models.Post) (models.PostID, error)
	GetPost(ctx context.Context, postId models.PostID) (models.Post, error)
	UpdatePost(ctx context.Context, postId models.PostID, update models.PostUpdate) (models.Post, error)
	DeletePost(ctx context.Context, postId models.PostID) error
	ListPosts(ctx context.Context, filter Filter, page int, size int) (models.PostsPage, error)
}

// UserStorage persists account records for the auth service.
type UserStorage interface {
	AddUser(ctx context.Context, user models.User) (models.UserID, error)
	GetUser(ctx context.Context, userId models.UserID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, userId models.UserID, update models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, userId models.UserID) error
}
