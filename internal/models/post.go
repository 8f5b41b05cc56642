package models

import "time"

type PostID string

type UserID string

type FileID string

// PostStatus is the canonical post visibility enumeration. An active post is
// readable by anyone, an inactive one only by users carrying an explicit
// permission entry.
type PostStatus string

const (
	StatusActive   PostStatus = "active"
	StatusInactive PostStatus = "inactive"
)

func (s PostStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Post is one persisted document in the external store. Like holds a
// JSON-encoded array of liker user ids; a malformed value degrades to an
// empty list on read, it is never rejected.
type Post struct {
	Id          PostID     `json:"id" bson:"-"`
	Title       string     `json:"title" bson:"title"`
	Content     string     `json:"content" bson:"content"`
	Status      PostStatus `json:"status" bson:"status"`
	AuthorId    UserID     `json:"authorId" bson:"authorid"`
	AuthorName  string     `json:"authorName" bson:"authorname"`
	ImageId     FileID     `json:"imageId" bson:"imageid"`
	Like        string     `json:"like" bson:"like"`
	Permissions []string   `json:"permissions" bson:"permissions"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdat"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedat"`
}

// PostUpdate is a partial update. Nil fields are stripped before the store
// call and leave the stored value unchanged.
type PostUpdate struct {
	Title       *string
	Content     *string
	Status      *PostStatus
	AuthorName  *string
	ImageId     *FileID
	Like        *string
	Permissions []string
}

type PostsPage struct {
	Posts    []Post `json:"posts"`
	Total    int64  `json:"total"`
	NextPage string `json:"nextPage,omitempty"`
}
