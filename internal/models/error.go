package models

import "errors"

var ErrBadRequest = errors.New("bad request")
var ErrAuthRequired = errors.New("login required")
var ErrUnauthorized = errors.New("user token is invalid")
var ErrForbidden = errors.New("user is not allowed to edit this post")
var ErrNotFound = errors.New("post is not found")
var ErrCreation = errors.New("post could not be created")
var ErrUpdate = errors.New("post could not be updated")
var ErrEmailTaken = errors.New("email already in use")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrToggleInFlight = errors.New("like toggle already in progress")
