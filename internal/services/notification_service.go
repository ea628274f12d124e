package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/push"
	"github.com/pawsafety/pawsafety-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// NotificationService writes in-app notifications and delivers push messages best-effort.
type NotificationService struct {
	repo   NotificationStore
	tokens PushTokenStore
	pusher PushSender
	ttl    time.Duration
	now    func() time.Time
}

// NewNotificationService creates the service. A nil pusher disables push delivery.
func NewNotificationService(repo NotificationStore, tokens PushTokenStore, pusher PushSender, ttl time.Duration) *NotificationService {
	return &NotificationService{
		repo:   repo,
		tokens: tokens,
		pusher: pusher,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Notify stores a notification for the user and attempts push delivery.
// Failures are logged and swallowed.
func (s *NotificationService) Notify(ctx context.Context, userID, notifType, title, body string, data models.NotificationData) {
	now := s.now()
	notif := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Type:      notifType,
		Data:      data,
		Read:      false,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"userID": userID,
			"type":   notifType,
		}).Warn("Failed to create notification")
	}

	s.sendPush(ctx, userID, title, body, data)
}

func (s *NotificationService) sendPush(ctx context.Context, userID, title, body string, data models.NotificationData) {
	if s.pusher == nil || s.tokens == nil {
		return
	}

	token, err := s.tokens.GetToken(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("userID", userID).Debug("No push token registered, skipping push")
		} else {
			logrus.WithError(err).WithField("userID", userID).Warn("Failed to load push token")
		}
		return
	}

	tickets, err := s.pusher.Send(ctx, []push.Message{push.NewMessage(token, title, body, data)})
	for _, ticket := range tickets {
		if ticket.DeviceNotRegistered() {
			s.forgetToken(ctx, userID)
			break
		}
	}
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"userID": userID,
			"type":   data.Type,
		}).Warn("Push delivery failed")
		return
	}
	logrus.WithFields(logrus.Fields{"userID": userID, "type": data.Type}).Debug("Push delivered")
}

func (s *NotificationService) forgetToken(ctx context.Context, userID string) {
	inv, ok := s.tokens.(TokenInvalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, userID); err != nil {
		logrus.WithError(err).WithField("userID", userID).Warn("Failed to drop unregistered push token")
		return
	}
	logrus.WithField("userID", userID).Info("Dropped unregistered push token")
}

// RemoveRequestNotifications deletes the friend_request notifications that point
// at requestID. Failures are logged and swallowed.
func (s *NotificationService) RemoveRequestNotifications(ctx context.Context, userID, requestID string) {
	notifs, err := s.repo.FindByUserAndType(ctx, userID, models.NotificationFriendRequest)
	if err != nil {
		logrus.WithError(err).WithField("requestID", requestID).Warn("Failed to look up request notifications")
		return
	}

	for _, n := range notifs {
		if n.Data.RequestID != requestID {
			continue
		}
		if err := s.repo.DeleteNotification(ctx, n.ID, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("notificationID", n.ID).Warn("Failed to delete request notification")
		}
	}
}

// GetUserNotifications returns all notifications for a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of one of the user's notifications
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID, userID string) error {
	return s.repo.MarkAsRead(ctx, notifID, userID)
}

// DeleteNotification deletes one of the user's notifications
func (s *NotificationService) DeleteNotification(ctx context.Context, notifID, userID string) error {
	return s.repo.DeleteNotification(ctx, notifID, userID)
}

// DeleteExpiredNotifications is run by the cleanup job.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredNotifications(ctx)
}
