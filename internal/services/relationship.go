package services

import (
	"context"
	"sync"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// DeriveState computes the view label for targetID from the user's live lists.
// Priority is FRIENDS > REQUEST_SENT > REQUEST_RECEIVED > NONE, so a stale
// pending request never hides an existing friendship.
func DeriveState(snap *models.RelationshipSnapshot, targetID string) models.RelationshipState {
	if snap == nil {
		return models.StateNone
	}
	for _, f := range snap.Friends {
		if f.FriendID == targetID {
			return models.StateFriends
		}
	}
	for _, r := range snap.Sent {
		if r.ToUserID == targetID && r.IsPending() {
			return models.StateRequestSent
		}
	}
	for _, r := range snap.Incoming {
		if r.FromUserID == targetID && r.IsPending() {
			return models.StateRequestReceived
		}
	}
	return models.StateNone
}

// ChangeSource signals when anything in a user's friend graph changes.
type ChangeSource interface {
	Watch(ctx context.Context, userID string) (<-chan struct{}, error)
}

// RelationshipFeed pushes a fresh snapshot to subscribers on every change.
type RelationshipFeed struct {
	friends *FriendService
	source  ChangeSource
}

func NewRelationshipFeed(friends *FriendService, source ChangeSource) *RelationshipFeed {
	return &RelationshipFeed{friends: friends, source: source}
}

// Subscription is a live view owned by the caller, who must Close it.
type Subscription struct {
	updates chan *models.RelationshipSnapshot
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Updates delivers snapshots, starting with the current one. It is closed when
// the subscription ends.
func (s *Subscription) Updates() <-chan *models.RelationshipSnapshot {
	return s.updates
}

// Close stops the subscription and waits for its goroutine to exit.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

func (f *RelationshipFeed) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	changes, err := f.source.Watch(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		updates: make(chan *models.RelationshipSnapshot, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.updates)

		if !f.publish(ctx, sub, userID) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if !f.publish(ctx, sub, userID) {
					return
				}
			}
		}
	}()

	return sub, nil
}

// publish returns false once the subscription is cancelled.
func (f *RelationshipFeed) publish(ctx context.Context, sub *Subscription, userID string) bool {
	snap, err := f.friends.Snapshot(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		logrus.WithError(err).WithField("userID", userID).Warn("Failed to refresh relationship snapshot")
		return true
	}
	select {
	case sub.updates <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}
