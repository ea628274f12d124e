package models

import (
	"time"
)

const (
	NotificationFriendRequest         = "friend_request"
	NotificationFriendRequestAccepted = "friend_request_accepted"
)

// NotificationData is the type-specific payload carried by a notification and its push message.
type NotificationData struct {
	Type       string `bson:"type" json:"type"`
	RequestID  string `bson:"requestId,omitempty" json:"requestId,omitempty"`
	FromUserID string `bson:"fromUserId,omitempty" json:"fromUserId,omitempty"`
}

type Notification struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"userId" json:"userId"`
	Title     string           `bson:"title" json:"title"`
	Body      string           `bson:"body" json:"body"`
	Type      string           `bson:"type" json:"type"`
	Data      NotificationData `bson:"data" json:"data"`
	Read      bool             `bson:"read" json:"read"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time        `bson:"expiresAt" json:"expiresAt"` // swept by the cleanup job
}

// PushToken is the device token registered by the mobile client, keyed by user ID.
type PushToken struct {
	UserID    string    `bson:"_id" json:"userId"`
	Token     string    `bson:"token" json:"token"`
	Platform  string    `bson:"platform,omitempty" json:"platform,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
