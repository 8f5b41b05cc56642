package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPosts(t *testing.T, s *InMemoryStorage, n int, author models.UserID, status models.PostStatus) []models.PostID {
	t.Helper()
	ids := make([]models.PostID, 0, n)
	for i := 0; i < n; i++ {
		id, err := s.AddPost(context.Background(), models.Post{
			Title:    fmt.Sprintf("post %d", i),
			Content:  "content",
			Status:   status,
			AuthorId: author,
			Like:     "[]",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestAddAndGetPost(t *testing.T) {
	s := NewInMemoryStorage()
	ids := seedPosts(t, s, 1, "u1", models.StatusActive)

	post, err := s.GetPost(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "post 0", post.Title)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestAddPostWithoutAuthor(t *testing.T) {
	s := NewInMemoryStorage()
	_, err := s.AddPost(context.Background(), models.Post{Title: "t"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestGetMissingPost(t *testing.T) {
	s := NewInMemoryStorage()
	_, err := s.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdatePostMergesOnlySetFields(t *testing.T) {
	s := NewInMemoryStorage()
	ids := seedPosts(t, s, 1, "u1", models.StatusActive)

	like := `["u2"]`
	updated, err := s.UpdatePost(context.Background(), ids[0], models.PostUpdate{Like: &like})
	require.NoError(t, err)

	assert.Equal(t, like, updated.Like)
	assert.Equal(t, "post 0", updated.Title, "unset fields stay untouched")
	assert.Equal(t, models.StatusActive, updated.Status)
}

func TestDeletePost(t *testing.T) {
	s := NewInMemoryStorage()
	ids := seedPosts(t, s, 2, "u1", models.StatusActive)

	require.NoError(t, s.DeletePost(context.Background(), ids[0]))
	assert.ErrorIs(t, s.DeletePost(context.Background(), ids[0]), models.ErrNotFound)

	page, err := s.ListPosts(context.Background(), Filter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)
}

func TestListPostsNewestFirstAndPaged(t *testing.T) {
	s := NewInMemoryStorage()
	seedPosts(t, s, 5, "u1", models.StatusActive)

	page, err := s.ListPosts(context.Background(), Filter{}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, "2", page.NextPage)
	assert.Equal(t, "post 4", page.Posts[0].Title)

	last, err := s.ListPosts(context.Background(), Filter{}, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Posts, 1)
	assert.Empty(t, last.NextPage)
}

func TestListPostsFilters(t *testing.T) {
	s := NewInMemoryStorage()
	seedPosts(t, s, 2, "u1", models.StatusActive)
	seedPosts(t, s, 3, "u2", models.StatusInactive)

	byAuthor, err := s.ListPosts(context.Background(), Filter{AuthorId: "u2"}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, byAuthor.Posts, 3)

	active, err := s.ListPosts(context.Background(), Filter{Status: models.StatusActive}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, active.Posts, 2)
}

func TestListPostsRejectsUnboundedSize(t *testing.T) {
	s := NewInMemoryStorage()
	_, err := s.ListPosts(context.Background(), Filter{}, 1, MaxPageSize+1)
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = s.ListPosts(context.Background(), Filter{}, 0, 10)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserLifecycle(t *testing.T) {
	s := NewInMemoryStorage()

	id, err := s.AddUser(context.Background(), models.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = s.AddUser(context.Background(), models.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	byEmail, err := s.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.Id)

	name := "Ada L."
	updated, err := s.UpdateUser(context.Background(), id, models.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)

	require.NoError(t, s.DeleteUser(context.Background(), id))
	_, err = s.GetUser(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// the email is free again after deletion
	_, err = s.AddUser(context.Background(), models.User{Email: "ada@example.com"})
	assert.NoError(t, err)
}
