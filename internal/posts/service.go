// Package posts is the application-facing wrapper around the document store
// and the file store: it owns the coupling between a post and its featured
// image and applies the permission recomputation on every write.
package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lekhoni/lekhoni/internal/files"
	"github.com/lekhoni/lekhoni/internal/likes"
	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/permissions"
	"github.com/lekhoni/lekhoni/internal/storage"
)

type Service struct {
	storage storage.Storage
	files   files.FileStore
}

func New(s storage.Storage, f files.FileStore) *Service {
	return &Service{storage: s, files: f}
}

type CreateInput struct {
	Title   string
	Content string
	Status  models.PostStatus
	ImageId models.FileID
}

// Create persists a new post. A post without its uploaded featured image must
// never reach the store, so a missing image id fails before the create call.
func (s *Service) Create(ctx context.Context, input CreateInput, actor models.User) (models.Post, error) {
	if actor.Id == "" {
		return models.Post{}, models.ErrAuthRequired
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return models.Post{}, fmt.Errorf("%w: title and content are required", models.ErrCreation)
	}
	if input.ImageId == "" {
		return models.Post{}, fmt.Errorf("%w: a featured image is required", models.ErrCreation)
	}
	status := input.Status
	if status == "" {
		status = models.StatusActive
	}
	if !status.Valid() {
		return models.Post{}, fmt.Errorf("%w: unknown status %q", models.ErrCreation, input.Status)
	}

	authorName := actor.Name
	if authorName == "" {
		authorName = actor.Email
	}

	post := models.Post{
		Title:       input.Title,
		Content:     input.Content,
		Status:      status,
		AuthorId:    actor.Id,
		AuthorName:  authorName,
		ImageId:     input.ImageId,
		Like:        "[]",
		Permissions: permissions.Initial(actor.Id, status == models.StatusActive),
	}

	postId, err := s.storage.AddPost(ctx, post)
	if err != nil {
		return models.Post{}, fmt.Errorf("%w: %v", models.ErrCreation, err)
	}
	post.Id = postId
	return post, nil
}

// Get returns the post or models.ErrNotFound. The store distinguishes a
// missing document from a failed fetch; both still render as not-found at the
// HTTP boundary, but callers here can tell them apart.
func (s *Service) Get(ctx context.Context, postId models.PostID) (models.Post, error) {
	return s.storage.GetPost(ctx, postId)
}

// Visible reports whether the post's permission entries let the user read it.
// The author always can.
func Visible(post models.Post, userId models.UserID) bool {
	if post.AuthorId == userId && userId != "" {
		return true
	}
	return permissions.AllowsRead(post.Permissions, userId)
}

type UpdateInput struct {
	Title      *string
	Content    *string
	Status     *models.PostStatus
	ImageId    *models.FileID
	AuthorName *string
}

// Update merges the given fields into the post and recomputes its permission
// entries. Only the author may edit. When the update swaps the featured
// image, the old image is deleted only after the document write succeeded.
func (s *Service) Update(ctx context.Context, postId models.PostID, input UpdateInput, actor models.User) (models.Post, error) {
	if actor.Id == "" {
		return models.Post{}, models.ErrAuthRequired
	}
	if input.Status != nil && !input.Status.Valid() {
		return models.Post{}, fmt.Errorf("%w: unknown status %q", models.ErrUpdate, *input.Status)
	}

	current, err := s.storage.GetPost(ctx, postId)
	if err != nil {
		return models.Post{}, err
	}
	if current.AuthorId != actor.Id {
		return models.Post{}, models.ErrForbidden
	}

	status := current.Status
	if input.Status != nil {
		status = *input.Status
	}
	patched := permissions.Patch(current.Permissions, current.AuthorId, actor.Id, status == models.StatusActive)

	updated, err := s.storage.UpdatePost(ctx, postId, models.PostUpdate{
		Title:       input.Title,
		Content:     input.Content,
		Status:      input.Status,
		AuthorName:  input.AuthorName,
		ImageId:     input.ImageId,
		Permissions: patched,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Post{}, err
		}
		return models.Post{}, fmt.Errorf("%w: %v", models.ErrUpdate, err)
	}

	if input.ImageId != nil && current.ImageId != "" && current.ImageId != *input.ImageId {
		if err := s.files.Delete(ctx, current.ImageId); err != nil {
			log.Printf("posts: delete replaced image %v: %v", current.ImageId, err)
		}
	}

	return updated, nil
}

// Delete removes the post and then its image. It reports success as a plain
// boolean; callers cannot tell "already gone" from "delete failed" and have
// to check the flag. The image is removed strictly after the document delete
// succeeded so a failed delete never leaves a post pointing at nothing.
func (s *Service) Delete(ctx context.Context, postId models.PostID, actor models.User) bool {
	if actor.Id == "" {
		return false
	}

	current, err := s.storage.GetPost(ctx, postId)
	if err != nil {
		return false
	}
	if current.AuthorId != actor.Id {
		return false
	}

	if err := s.storage.DeletePost(ctx, postId); err != nil {
		log.Printf("posts: delete %v: %v", postId, err)
		return false
	}

	if current.ImageId != "" {
		if err := s.files.Delete(ctx, current.ImageId); err != nil {
			log.Printf("posts: delete image %v: %v", current.ImageId, err)
		}
	}
	return true
}

// List returns a page of posts. A storage failure degrades to an empty page:
// the feed renders empty instead of crashing, at the cost of masking an
// outage as "no posts".
func (s *Service) List(ctx context.Context, filter storage.Filter, page int, size int) models.PostsPage {
	if size < 1 || size > storage.MaxPageSize {
		size = storage.MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	result, err := s.storage.ListPosts(ctx, filter, page, size)
	if err != nil {
		log.Printf("posts: list: %v", err)
		return models.PostsPage{Posts: []models.Post{}}
	}
	return result
}

// Card is a list/detail representation with the like state resolved for the
// requesting user and the image turned into a servable URL.
type Card struct {
	models.Post
	Likes    int    `json:"likes"`
	Liked    bool   `json:"liked"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (s *Service) CardFor(post models.Post, viewer models.UserID) Card {
	card := Card{
		Post:  post,
		Likes: len(likes.ParseLikers(post.Like)),
		Liked: likes.Liked(post.Like, viewer),
	}
	if post.ImageId != "" {
		card.ImageURL = s.files.PreviewURL(post.ImageId)
	}
	return card
}
