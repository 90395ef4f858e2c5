package domain

import "time"

type CommentID string

type Comment struct {
	ID        CommentID `json:"_id" bson:"_id"`
	VideoID   VideoID   `json:"videoId" bson:"videoId"`
	AuthorID  UserID    `json:"userId" bson:"userId"`
	Text      string    `json:"commentText" bson:"commentText"`
	Version   int64     `json:"-" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (c *Comment) IsAuthoredBy(id UserID) bool {
	return c.AuthorID == id
}

func (c *Comment) Clone() *Comment {
	cp := *c
	return &cp
}

// CommentView is a comment with its author resolved at read time.
type CommentView struct {
	ID        CommentID `json:"_id"`
	VideoID   VideoID   `json:"videoId"`
	Author    Profile   `json:"userId"`
	Text      string    `json:"commentText"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
