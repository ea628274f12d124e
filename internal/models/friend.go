package models

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest is a directional proposal. Its ID is always RequestID(from, to),
// so there is at most one document per ordered pair.
type FriendRequest struct {
	ID                   string        `bson:"_id" json:"id"`
	FromUserID           string        `bson:"fromUserId" json:"fromUserId"`
	ToUserID             string        `bson:"toUserId" json:"toUserId"`
	FromUserName         string        `bson:"fromUserName" json:"fromUserName"`
	FromUserEmail        string        `bson:"fromUserEmail" json:"fromUserEmail"`
	FromUserProfileImage string        `bson:"fromUserProfileImage,omitempty" json:"fromUserProfileImage,omitempty"`
	Status               RequestStatus `bson:"status" json:"status"`
	CreatedAt            time.Time     `bson:"createdAt" json:"createdAt"`
	RespondedAt          *time.Time    `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

func (r *FriendRequest) IsPending() bool {
	return r.Status == RequestPending
}

// Friendship is one half of a mirrored pair: owner UserID lists FriendID.
type Friendship struct {
	ID                 string    `bson:"_id" json:"id"`
	UserID             string    `bson:"userId" json:"userId"`
	FriendID           string    `bson:"friendId" json:"friendId"`
	FriendName         string    `bson:"friendName" json:"friendName"`
	FriendEmail        string    `bson:"friendEmail" json:"friendEmail"`
	FriendProfileImage string    `bson:"friendProfileImage,omitempty" json:"friendProfileImage,omitempty"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
}

// ValidUserID reports whether id can be joined into a pair ID. Pair IDs are
// split on '_', so user IDs must not contain it. Auth platform IDs (ObjectID
// hex or UIDs) never do.
func ValidUserID(id string) bool {
	return id != "" && !strings.Contains(id, "_")
}

// RequestID and FriendshipID require IDs accepted by ValidUserID.
func RequestID(fromUserID, toUserID string) string {
	return fromUserID + "_" + toUserID
}

func FriendshipID(ownerID, friendID string) string {
	return ownerID + "_" + friendID
}

// NewFriendship builds the owner's half of a pair from the friend's live profile.
func NewFriendship(ownerID string, friend *User, now time.Time) *Friendship {
	return &Friendship{
		ID:                 FriendshipID(ownerID, friend.ID),
		UserID:             ownerID,
		FriendID:           friend.ID,
		FriendName:         friend.DisplayName(),
		FriendEmail:        friend.Email,
		FriendProfileImage: friend.ProfileImage,
		CreatedAt:          now,
	}
}

// MirrorID returns the ID of the other half of the pair.
func (f *Friendship) MirrorID() string {
	return FriendshipID(f.FriendID, f.UserID)
}
