package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/lekhoni/lekhoni/internal/utils"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Id    models.UserID `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{Id: u.Id, Name: u.Name, Email: u.Email}
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	// an authenticated user landing on signup just gets their session back
	if user, ok := a.currentUser(r); ok {
		utils.RespondJSON(w, http.StatusOK, toUserResponse(user))
		return
	}

	var in credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "invalid json")
		return
	}

	user, token, err := a.auth.Register(r.Context(), in.Name, in.Email, in.Password)
	if errors.Is(err, models.ErrEmailTaken) {
		utils.ErrorJSON(w, http.StatusConflict, err.Error())
		return
	} else if errors.Is(err, models.ErrBadRequest) {
		utils.BadRequest(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not create the account")
		return
	}

	a.setSessionCookie(w, token)
	utils.RespondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if user, ok := a.currentUser(r); ok {
		utils.RespondJSON(w, http.StatusOK, toUserResponse(user))
		return
	}

	var in credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "invalid json")
		return
	}

	user, token, err := a.sessions.Login(r.Context(), in.Email, in.Password)
	if errors.Is(err, models.ErrInvalidCredentials) || errors.Is(err, models.ErrUnauthorized) {
		utils.Unauthorized(w, models.ErrInvalidCredentials.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "login failed")
		return
	}

	a.setSessionCookie(w, token)
	utils.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	user, _ := a.currentUser(r)

	// local state is cleared no matter what the backend said
	_ = a.sessions.Logout(r.Context(), a.sessionToken(r), user.Id)
	a.clearSessionCookie(w)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (a *App) me(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(r)
	if !ok {
		utils.Unauthorized(w, "no session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

type profileRequest struct {
	Name string `json:"name"`
}

func (a *App) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := a.currentUser(r)

	var in profileRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "invalid json")
		return
	}

	updated, err := a.auth.UpdateName(r.Context(), user.Id, in.Name)
	if errors.Is(err, models.ErrBadRequest) {
		utils.BadRequest(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not update the profile")
		return
	}

	a.sessions.ForgetUser(user.Id)
	utils.RespondJSON(w, http.StatusOK, toUserResponse(updated))
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (a *App) updatePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := a.currentUser(r)

	var in passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.BadRequest(w, "invalid json")
		return
	}

	token, err := a.auth.UpdatePassword(r.Context(), user.Id, in.OldPassword, in.NewPassword)
	if errors.Is(err, models.ErrInvalidCredentials) {
		utils.Unauthorized(w, err.Error())
		return
	} else if errors.Is(err, models.ErrBadRequest) {
		utils.BadRequest(w, err.Error())
		return
	} else if err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not update the password")
		return
	}

	// the password change revoked every session; swap in the fresh token
	a.sessions.ForgetUser(user.Id)
	a.setSessionCookie(w, token)
	utils.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *App) deleteAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := a.currentUser(r)

	if err := a.auth.DeleteAccount(r.Context(), user.Id); err != nil {
		utils.ErrorJSON(w, http.StatusInternalServerError, "could not delete the account")
		return
	}

	a.sessions.ForgetUser(user.Id)
	a.clearSessionCookie(w)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
