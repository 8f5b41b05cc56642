package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lekhoni/lekhoni/internal/feed"
	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/posts"
	"github.com/lekhoni/lekhoni/internal/storage"
	"github.com/lekhoni/lekhoni/internal/utils"
)

func getParam(r *http.Request, key string, defaultValue int) (int, error) {
	param := r.URL.Query().Get(key)
	if param == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(param)
}

type cardsPage struct {
	Posts    []posts.Card `json:"posts"`
	Total    int64        `json:"total"`
	NextPage string       `json:"nextPage,omitempty"`
}

func (a *App) cardsFor(page models.PostsPage, viewer models.UserID) cardsPage {
	cards := make([]posts.Card, 0, len(page.Posts))
	for _, post := range page.Posts {
		cards = append(cards, a.posts.CardFor(post, viewer))
	}
	return cardsPage{Posts: cards, Total: page.Total, NextPage: page.NextPage}
}

// listPosts serves the public feed: active posts only, newest first. The
// first default-size page comes from the periodically refreshed cache.
func (a *App) listPosts(w http.ResponseWriter, r *http.Request) {
	viewer, _ := a.currentUser(r)

	page, err := getParam(r, "page", 1)
	if err != nil || page < 1 {
		utils.BadRequest(w, "invalid page")
		return
	}
	size, err := getParam(r, "size", feed.RecentSize)
	if err != nil || size < 1 || size > storage.MaxPageSize {
		utils.BadRequest(w, "invalid size")
		return
	}

	if page == 1 && size == feed.RecentSize && a.feed != nil {
		utils.RespondJSON(w, http.StatusOK, a.cardsFor(a.feed.Recent(r.Context()), viewer.Id))
		return
	}

	result := a.posts.List(r.Context(), storage.Filter{Status: models.StatusActive}, page, size)
	utils.RespondJSON(w, http.StatusOK, a.cardsFor(result, viewer.Id))
}

// getPost returns the document, or not-found both when the post is missing
// and when the viewer has no read permission on it. The two cases look the
// same on the wire on purpose: a permission probe must not reveal that a
// private post exists.
func (a *App) getPost(w http.ResponseWriter, r *http.Request) {
	viewer, _ := a.currentUser(r)

	post, err := a.posts.Get(r.Context(), models.PostID(chi.URLParam(r, "postId")))
	if errors.Is(err, models.ErrNotFound) {
		utils.NotFound(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not fetch the post")
		return
	}

	if !posts.Visible(post, viewer.Id) {
		utils.NotFound(w, models.ErrNotFound.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, a.posts.CardFor(post, viewer.Id))
}

type postRequest struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Status  models.PostStatus `json:"status"`
	ImageId models.FileID     `json:"imageId"`
}

func (a *App) createPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := a.currentUser(r)

	var in postRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "invalid json")
		return
	}

	post, err := a.posts.Create(r.Context(), posts.CreateInput{
		Title:   in.Title,
		Content: in.Content,
		Status:  in.Status,
		ImageId: in.ImageId,
	}, actor)
	if errors.Is(err, models.ErrCreation) {
		utils.BadRequest(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not create the post")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, a.posts.CardFor(post, actor.Id))
}

type postUpdateRequest struct {
	Title   *string            `json:"title"`
	Content *string            `json:"content"`
	Status  *models.PostStatus `json:"status"`
	ImageId *models.FileID     `json:"imageId"`
}

func (a *App) updatePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := a.currentUser(r)

	var in postUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "invalid json")
		return
	}

	post, err := a.posts.Update(r.Context(), models.PostID(chi.URLParam(r, "postId")), posts.UpdateInput{
		Title:   in.Title,
		Content: in.Content,
		Status:  in.Status,
		ImageId: in.ImageId,
	}, actor)
	if errors.Is(err, models.ErrNotFound) {
		utils.NotFound(w, err.Error())
		return
	} else if errors.Is(err, models.ErrForbidden) {
		utils.Forbidden(w, err.Error())
		return
	} else if errors.Is(err, models.ErrUpdate) {
		utils.BadRequest(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not update the post")
		return
	}

	utils.RespondJSON(w, http.StatusOK, a.posts.CardFor(post, actor.Id))
}

func (a *App) deletePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := a.currentUser(r)

	deleted := a.posts.Delete(r.Context(), models.PostID(chi.URLParam(r, "postId")), actor)
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (a *App) toggleLike(w http.ResponseWriter, r *http.Request) {
	actor, _ := a.currentUser(r)

	result, err := a.toggler.Toggle(r.Context(), models.PostID(chi.URLParam(r, "postId")), actor.Id)
	if errors.Is(err, models.ErrAuthRequired) {
		utils.Unauthorized(w, err.Error())
		return
	} else if errors.Is(err, models.ErrToggleInFlight) {
		utils.ErrorJSON(w, http.StatusConflict, err.Error())
		return
	} else if errors.Is(err, models.ErrNotFound) {
		utils.NotFound(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not update the like")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// userPosts is the author feed. Authors see all of their own posts, everyone
// else only the active ones.
func (a *App) userPosts(w http.ResponseWriter, r *http.Request) {
	viewer, _ := a.currentUser(r)
	userId := models.UserID(chi.URLParam(r, "userId"))

	page, err := getParam(r, "page", 1)
	if err != nil || page < 1 {
		utils.BadRequest(w, "invalid page")
		return
	}
	size, err := getParam(r, "size", feed.RecentSize)
	if err != nil || size < 1 || size > storage.MaxPageSize {
		utils.BadRequest(w, "invalid size")
		return
	}

	filter := storage.Filter{AuthorId: userId}
	if viewer.Id != userId {
		filter.Status = models.StatusActive
	}

	result := a.posts.List(r.Context(), filter, page, size)
	utils.RespondJSON(w, http.StatusOK, a.cardsFor(result, viewer.Id))
}
