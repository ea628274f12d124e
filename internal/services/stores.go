package services

import (
	"context"
	"time"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/push"
)

// Session identifies the signed-in caller. Handlers build it from the auth
// token and pass it into every operation.
type Session struct {
	UserID string
}

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type FriendRequestStore interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequest(ctx context.Context, id string) (*models.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus, respondedAt time.Time) error
	DeleteRequest(ctx context.Context, id string) error
	GetIncomingPending(ctx context.Context, toUserID string) ([]models.FriendRequest, error)
	GetSentRequests(ctx context.Context, fromUserID string) ([]models.FriendRequest, error)
}

type FriendshipStore interface {
	GetFriendship(ctx context.Context, ownerID, friendID string) (*models.Friendship, error)
	GetFriendsByUser(ctx context.Context, userID string) ([]models.Friendship, error)
	CreatePair(ctx context.Context, a, b *models.Friendship) error
	DeletePair(ctx context.Context, userA, userB string) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	FindByUserAndType(ctx context.Context, userID, notifType string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID string) error
	DeleteNotification(ctx context.Context, id, userID string) error
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

type PushTokenStore interface {
	GetToken(ctx context.Context, userID string) (string, error)
}

// TokenInvalidator is implemented by token stores that cache tokens.
type TokenInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type PushSender interface {
	Send(ctx context.Context, messages []push.Message) ([]push.Ticket, error)
}

// Notifier is the side-effect channel of the friend workflow. Implementations
// must not fail the calling operation.
type Notifier interface {
	Notify(ctx context.Context, userID, notifType, title, body string, data models.NotificationData)
	RemoveRequestNotifications(ctx context.Context, userID, requestID string)
}
