package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// FriendService runs the friend request lifecycle: send, cancel, respond,
// unfriend, and the derived relationship state used by the clients.
type FriendService struct {
	users       UserStore
	requests    FriendRequestStore
	friendships FriendshipStore
	notifier    Notifier
	now         func() time.Time
}

// NewFriendService creates a new FriendService.
func NewFriendService(users UserStore, requests FriendRequestStore, friendships FriendshipStore, notifier Notifier) *FriendService {
	return &FriendService{
		users:       users,
		requests:    requests,
		friendships: friendships,
		notifier:    notifier,
		now:         time.Now,
	}
}

// SendFriendRequest proposes a friendship from the session user to recipientID.
// Preconditions are checked in order and the first failing one is returned.
func (s *FriendService) SendFriendRequest(ctx context.Context, sess Session, recipientID string) (*models.FriendRequest, error) {
	senderID := sess.UserID
	if !models.ValidUserID(recipientID) || recipientID == senderID {
		return nil, ErrInvalidTarget
	}

	friends, err := s.areFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	requestID := models.RequestID(senderID, recipientID)
	previous, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.IsPending() {
		return nil, ErrRequestAlreadyPending
	}

	incoming, err := s.findRequest(ctx, models.RequestID(recipientID, senderID))
	if err != nil {
		return nil, err
	}
	if incoming != nil && incoming.IsPending() {
		return nil, ErrIncomingRequestExists
	}

	if _, err := s.users.GetUserByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("could not load recipient: %w", err)
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("could not load sender profile: %w", err)
	}

	if previous != nil {
		if err := s.requests.DeleteRequest(ctx, requestID); err != nil {
			return nil, err
		}
	}

	request := &models.FriendRequest{
		ID:                   requestID,
		FromUserID:           senderID,
		ToUserID:             recipientID,
		FromUserName:         sender.DisplayName(),
		FromUserEmail:        sender.Email,
		FromUserProfileImage: sender.ProfileImage,
		Status:               models.RequestPending,
		CreatedAt:            s.now(),
	}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"requestID": requestID,
		"from":      senderID,
		"to":        recipientID,
	}).Info("Friend request sent")

	s.notifier.Notify(ctx, recipientID, models.NotificationFriendRequest,
		"New Friend Request",
		fmt.Sprintf("%s sent you a friend request", request.FromUserName),
		models.NotificationData{
			Type:       models.NotificationFriendRequest,
			RequestID:  requestID,
			FromUserID: senderID,
		},
	)

	return request, nil
}

// CancelFriendRequest withdraws the session user's pending request to recipientID.
func (s *FriendService) CancelFriendRequest(ctx context.Context, sess Session, recipientID string) error {
	requestID := models.RequestID(sess.UserID, recipientID)
	request, err := s.findRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request == nil || !request.IsPending() {
		return ErrNoPendingRequest
	}

	if err := s.requests.DeleteRequest(ctx, requestID); err != nil {
		return err
	}

	logrus.WithField("requestID", requestID).Info("Friend request cancelled")
	s.notifier.RemoveRequestNotifications(ctx, recipientID, requestID)
	return nil
}

// RespondToRequest accepts or rejects a pending request addressed to the session user.
// Completed steps are not rolled back if a later step fails.
func (s *FriendService) RespondToRequest(ctx context.Context, sess Session, requestID string, accept bool) (*models.FriendRequest, error) {
	request, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.ToUserID != sess.UserID {
		return nil, ErrNotRequestRecipient
	}
	if !request.IsPending() {
		return nil, ErrRequestNotPending
	}

	now := s.now()
	status := models.RequestRejected
	if accept {
		status = models.RequestAccepted
	}

	if err := s.requests.UpdateRequestStatus(ctx, requestID, status, now); err != nil {
		return nil, err
	}
	request.Status = status
	request.RespondedAt = &now

	if !accept {
		logrus.WithField("requestID", requestID).Info("Friend request rejected")
		return request, nil
	}

	responder, err := s.materialize(ctx, request.ToUserID, request.FromUserID, now)
	if err != nil {
		return nil, err
	}

	logrus.WithField("requestID", requestID).Info("Friend request accepted")
	s.notifier.Notify(ctx, request.FromUserID, models.NotificationFriendRequestAccepted,
		"Friend Request Accepted",
		fmt.Sprintf("%s accepted your friend request", responder.DisplayName()),
		models.NotificationData{
			Type:       models.NotificationFriendRequestAccepted,
			RequestID:  requestID,
			FromUserID: responder.ID,
		},
	)

	return request, nil
}

// MaterializeFriendship writes both halves of the friendship between two users
// from their live profiles. Writing the same pair twice is a no-op.
func (s *FriendService) MaterializeFriendship(ctx context.Context, userA, userB string) error {
	_, err := s.materialize(ctx, userA, userB, s.now())
	return err
}

func (s *FriendService) materialize(ctx context.Context, userA, userB string, now time.Time) (*models.User, error) {
	users, err := s.users.GetUsersByIDs(ctx, []string{userA, userB})
	if err != nil {
		return nil, fmt.Errorf("could not load profiles: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	a, b := byID[userA], byID[userB]
	if a == nil || b == nil {
		missing := userA
		if a != nil {
			missing = userB
		}
		return nil, fmt.Errorf("could not load profile %s: %w", missing, repository.ErrNotFound)
	}

	if err := s.friendships.CreatePair(ctx, models.NewFriendship(a.ID, b, now), models.NewFriendship(b.ID, a, now)); err != nil {
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}
	return a, nil
}

// Unfriend removes both halves of the friendship. A new request may be sent afterwards.
func (s *FriendService) Unfriend(ctx context.Context, sess Session, friendID string) error {
	friends, err := s.areFriends(ctx, sess.UserID, friendID)
	if err != nil {
		return err
	}
	if !friends {
		mirror, err := s.areFriends(ctx, friendID, sess.UserID)
		if err != nil {
			return err
		}
		if !mirror {
			return ErrNotFriends
		}
	}

	// The accepted request goes first so a reconciliation sweep cannot rebuild
	// the pair from it once either half is gone.
	if err := s.retireAcceptedRequests(ctx, sess.UserID, friendID); err != nil {
		return err
	}
	if err := s.friendships.DeletePair(ctx, sess.UserID, friendID); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"userID": sess.UserID, "friendID": friendID}).Info("Friendship removed")
	return nil
}

func (s *FriendService) retireAcceptedRequests(ctx context.Context, userA, userB string) error {
	for _, id := range []string{models.RequestID(userA, userB), models.RequestID(userB, userA)} {
		request, err := s.findRequest(ctx, id)
		if err != nil {
			return err
		}
		if request == nil || request.Status != models.RequestAccepted {
			continue
		}
		if err := s.requests.DeleteRequest(ctx, id); err != nil {
			return fmt.Errorf("failed to retire accepted request: %w", err)
		}
	}
	return nil
}

// GetFriends lists the session user's friendships.
func (s *FriendService) GetFriends(ctx context.Context, userID string) ([]models.Friendship, error) {
	return s.friendships.GetFriendsByUser(ctx, userID)
}

// GetPendingRequests lists pending requests addressed to the user.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.requests.GetIncomingPending(ctx, userID)
}

// GetSentRequests lists the user's outgoing requests that are still pending.
func (s *FriendService) GetSentRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	sent, err := s.requests.GetSentRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending := make([]models.FriendRequest, 0, len(sent))
	for _, r := range sent {
		if r.IsPending() {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// Snapshot loads the three live lists the relationship view is derived from.
func (s *FriendService) Snapshot(ctx context.Context, userID string) (*models.RelationshipSnapshot, error) {
	sent, err := s.requests.GetSentRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.requests.GetIncomingPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.friendships.GetFriendsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.RelationshipSnapshot{
		UserID:   userID,
		Sent:     sent,
		Incoming: incoming,
		Friends:  friends,
	}, nil
}

// RelationshipWith returns the session user's relationship state with targetID.
func (s *FriendService) RelationshipWith(ctx context.Context, sess Session, targetID string) (models.RelationshipState, error) {
	snap, err := s.Snapshot(ctx, sess.UserID)
	if err != nil {
		return models.StateNone, err
	}
	return DeriveState(snap, targetID), nil
}

func (s *FriendService) areFriends(ctx context.Context, ownerID, friendID string) (bool, error) {
	_, err := s.friendships.GetFriendship(ctx, ownerID, friendID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// findRequest returns nil, nil when no document has the given ID.
func (s *FriendService) findRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	request, err := s.requests.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return request, nil
}
