package domain

import (
	"slices"
	"time"
)

type UserID string

type User struct {
	ID                 UserID    `json:"_id" bson:"_id"`
	ChannelName        string    `json:"channelName" bson:"channelName"`
	Email              string    `json:"email" bson:"email"`
	Phone              string    `json:"phone" bson:"phone"`
	PasswordHash       string    `json:"-" bson:"password"`
	Logo               MediaRef  `json:"logo" bson:"logo"`
	Subscribers        int       `json:"subscribers" bson:"subscribers"`
	SubscriberBy       []UserID  `json:"subscriberBy" bson:"subscriberBy"`
	SubscribedChannels []UserID  `json:"subscribedChannels" bson:"subscribedChannels"`
	Version            int64     `json:"-" bson:"version"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Profile is the public projection used when resolving authors.
type Profile struct {
	ID          UserID `json:"_id"`
	ChannelName string `json:"channelName,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, ChannelName: u.ChannelName, LogoURL: u.Logo.URL}
}

// Clone returns a deep copy so stores never share slices with callers.
func (u *User) Clone() *User {
	c := *u
	c.SubscriberBy = slices.Clone(u.SubscriberBy)
	c.SubscribedChannels = slices.Clone(u.SubscribedChannels)
	return &c
}
