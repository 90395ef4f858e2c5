package domain

import "fmt"

// Reaction is a user's like or dislike on a video.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// ApplyReaction records userID's reaction. A user holds at most one reaction
// per video: applying the opposite one moves the user between sets. Counters
// always equal the size of their membership set.
func (v *Video) ApplyReaction(userID UserID, kind Reaction) error {
	var target, opposite *[]UserID
	var targetCount, oppositeCount *int
	var already error

	switch kind {
	case ReactionLike:
		target, targetCount = &v.LikedBy, &v.Likes
		opposite, oppositeCount = &v.DislikedBy, &v.Dislikes
		already = ErrAlreadyLiked
	case ReactionDislike:
		target, targetCount = &v.DislikedBy, &v.Dislikes
		opposite, oppositeCount = &v.LikedBy, &v.Likes
		already = ErrAlreadyDisliked
	default:
		return NewValidationError("reaction", fmt.Sprintf("unknown reaction %q", kind))
	}

	if containsUser(*target, userID) {
		return already
	}

	if containsUser(*opposite, userID) {
		*opposite = removeUser(*opposite, userID)
		*oppositeCount = len(*opposite)
	}

	*target = append(*target, userID)
	*targetCount = len(*target)
	return nil
}

// RecordView counts every call; viewers are not deduplicated.
func (v *Video) RecordView() {
	v.Views++
}

// Subscribe links subscriber and target on both sides.
func Subscribe(subscriber, target *User) error {
	if subscriber.ID == target.ID {
		return ErrSelfSubscription
	}
	if containsUser(target.SubscriberBy, subscriber.ID) {
		return ErrAlreadySubscribed
	}

	target.SubscriberBy = append(target.SubscriberBy, subscriber.ID)
	target.Subscribers = len(target.SubscriberBy)
	if !containsUser(subscriber.SubscribedChannels, target.ID) {
		subscriber.SubscribedChannels = append(subscriber.SubscribedChannels, target.ID)
	}
	return nil
}

// Unsubscribe removes the link from both sides; the counter never goes below zero.
func Unsubscribe(subscriber, target *User) error {
	if !containsUser(target.SubscriberBy, subscriber.ID) {
		return ErrNotSubscribed
	}

	target.SubscriberBy = removeUser(target.SubscriberBy, subscriber.ID)
	target.Subscribers = len(target.SubscriberBy)
	subscriber.SubscribedChannels = removeUser(subscriber.SubscribedChannels, target.ID)
	return nil
}

func containsUser(ids []UserID, id UserID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeUser(ids []UserID, id UserID) []UserID {
	out := make([]UserID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
