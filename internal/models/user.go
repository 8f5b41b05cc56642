package models

import "time"

// User mirrors the account record owned by the auth service. SessionEpoch is
// bumped whenever all of a user's sessions are revoked; tokens minted under an
// older epoch stop resolving to a user.
type User struct {
	Id           UserID    `json:"id" bson:"-"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordhash"`
	SessionEpoch int64     `json:"-" bson:"sessionepoch"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdat"`
}

// UserUpdate is a partial update of an account record.
type UserUpdate struct {
	Name         *string
	PasswordHash *string
	SessionEpoch *int64
}
