package domain

import (
	"slices"
	"strings"
	"time"
)

type VideoID string

type Video struct {
	ID          VideoID   `json:"_id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	OwnerID     UserID    `json:"user_id" bson:"ownerId"`
	Video       MediaRef  `json:"video" bson:"video"`
	Thumbnail   MediaRef  `json:"thumbnail" bson:"thumbnail"`
	Category    string    `json:"category" bson:"category"`
	Tags        []string  `json:"tags" bson:"tags"`
	Likes       int       `json:"likes" bson:"likes"`
	Dislikes    int       `json:"dislikes" bson:"dislikes"`
	Views       int64     `json:"views" bson:"views"`
	LikedBy     []UserID  `json:"likedBy" bson:"likedBy"`
	DislikedBy  []UserID  `json:"dislikedBy" bson:"dislikedBy"`
	Version     int64     `json:"-" bson:"version"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (v *Video) IsOwnedBy(id UserID) bool {
	return v.OwnerID == id
}

func (v *Video) Clone() *Video {
	c := *v
	c.Tags = slices.Clone(v.Tags)
	c.LikedBy = slices.Clone(v.LikedBy)
	c.DislikedBy = slices.Clone(v.DislikedBy)
	return &c
}

// ParseTags splits a comma-separated tag list, trimming blanks and keeping order.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
