// Package likes flips a user's membership in a post's liker list.
//
// The liker list lives in a single JSON-encoded string field on the post
// document. A toggle is a fetch-then-overwrite: read the document fresh,
// parse the list (malformed input degrades to empty), flip membership, write
// the re-encoded list back. There is no compare-and-swap, so two toggles
// racing from different processes follow last-writer-wins and one of them is
// lost. That matches the stored contract and is covered by tests rather than
// patched over.
package likes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/permissions"
	"github.com/lekhoni/lekhoni/internal/storage"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
)

// Result is what the UI shows after a successful toggle. It is computed from
// the locally built list, not re-fetched; the toggle trusts its own write.
type Result struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}

// toggleKey identifies one user's toggle on one post. The guard is per pair:
// the same user cannot double-fire, other users stay unaffected.
type toggleKey struct {
	post models.PostID
	user models.UserID
}

type Toggler struct {
	storage storage.Storage

	mutex    sync.Mutex
	inFlight map[toggleKey]struct{}
}

func NewToggler(s storage.Storage) *Toggler {
	return &Toggler{
		storage:  s,
		inFlight: make(map[toggleKey]struct{}),
	}
}

// State reports whether the user's toggle on the post is still running. A
// finished toggle reports its outcome through Toggle's return values; its
// marker is dropped, so the map only holds entries for toggles in flight.
func (t *Toggler) State(postId models.PostID, userId models.UserID) State {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.inFlight[toggleKey{post: postId, user: userId}]; ok {
		return StateLoading
	}
	return StateIdle
}

// Toggle flips userId's like on the post. It fails immediately without a
// logged-in user and rejects a second toggle by the same user for the same
// post while one is still in flight. The in-flight guard only covers this
// process; it does not serialize toggles across processes.
func (t *Toggler) Toggle(ctx context.Context, postId models.PostID, userId models.UserID) (Result, error) {
	if userId == "" {
		return Result{}, models.ErrAuthRequired
	}

	key := toggleKey{post: postId, user: userId}
	t.mutex.Lock()
	if _, busy := t.inFlight[key]; busy {
		t.mutex.Unlock()
		return Result{}, models.ErrToggleInFlight
	}
	t.inFlight[key] = struct{}{}
	t.mutex.Unlock()

	result, err := t.toggle(ctx, postId, userId)

	t.mutex.Lock()
	delete(t.inFlight, key)
	t.mutex.Unlock()

	return result, err
}

func (t *Toggler) toggle(ctx context.Context, postId models.PostID, userId models.UserID) (Result, error) {
	// fetch fresh, not from anything the caller has cached
	post, err := t.storage.GetPost(ctx, postId)
	if err != nil {
		return Result{}, err
	}
	// a post the user cannot read looks exactly like a missing one
	if post.AuthorId != userId && !permissions.AllowsRead(post.Permissions, userId) {
		return Result{}, models.ErrNotFound
	}

	likers := ParseLikers(post.Like)

	liked := false
	updated := make([]models.UserID, 0, len(likers)+1)
	for _, id := range likers {
		if id == userId {
			continue
		}
		updated = append(updated, id)
	}
	if len(updated) == len(likers) {
		updated = append(updated, userId)
		liked = true
	}

	encoded, err := json.Marshal(updated)
	if err != nil {
		return Result{}, err
	}
	like := string(encoded)

	if _, err := t.storage.UpdatePost(ctx, postId, models.PostUpdate{Like: &like}); err != nil {
		return Result{}, err
	}

	return Result{Count: len(updated), Liked: liked}, nil
}

// ParseLikers decodes a stored liker list. Anything that is not a JSON array
// of strings comes back as an empty list; a malformed field is recovered, not
// surfaced.
func ParseLikers(raw string) []models.UserID {
	if raw == "" {
		return []models.UserID{}
	}
	var likers []models.UserID
	if err := json.Unmarshal([]byte(raw), &likers); err != nil || likers == nil {
		return []models.UserID{}
	}
	return likers
}

// Liked reports whether the user is in the stored liker list.
func Liked(raw string, userId models.UserID) bool {
	for _, id := range ParseLikers(raw) {
		if id == userId {
			return true
		}
	}
	return false
}
