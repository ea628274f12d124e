package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

const defaultSweepBatch = 500

type OrphanStore interface {
	FindOrphans(ctx context.Context, limit int64) ([]models.Friendship, error)
	DeleteFriendship(ctx context.Context, id string) error
}

type RequestLookup interface {
	GetRequest(ctx context.Context, id string) (*models.FriendRequest, error)
}

type FriendshipMaterializer interface {
	MaterializeFriendship(ctx context.Context, userA, userB string) error
}

// FriendshipReconciler repairs friendships left with one half missing by an
// interrupted pair write.
type FriendshipReconciler struct {
	Friendships OrphanStore
	Requests    RequestLookup
	Friends     FriendshipMaterializer
	BatchSize   int64
}

// NewFriendshipReconciler creates a new instance of FriendshipReconciler
func NewFriendshipReconciler(friendships OrphanStore, requests RequestLookup, friends FriendshipMaterializer) *FriendshipReconciler {
	return &FriendshipReconciler{
		Friendships: friendships,
		Requests:    requests,
		Friends:     friends,
		BatchSize:   defaultSweepBatch,
	}
}

// RunSweep writes the missing mirror of every orphan backed by an accepted
// request and deletes the rest. It keeps going past per-orphan failures and
// returns the first one.
func (r *FriendshipReconciler) RunSweep(ctx context.Context) (repaired, removed int, err error) {
	batch := r.BatchSize
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	orphans, err := r.Friendships.FindOrphans(ctx, batch)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch orphaned friendships: %w", err)
	}

	var firstErr error
	for _, orphan := range orphans {
		accepted, lookupErr := r.acceptedEitherWay(ctx, orphan.UserID, orphan.FriendID)
		if lookupErr != nil {
			logrus.WithError(lookupErr).WithField("friendshipID", orphan.ID).Warn("Skipping orphan, request lookup failed")
			if firstErr == nil {
				firstErr = lookupErr
			}
			continue
		}

		if accepted {
			if err := r.Friends.MaterializeFriendship(ctx, orphan.UserID, orphan.FriendID); err != nil {
				logrus.WithError(err).WithField("friendshipID", orphan.ID).Warn("Failed to repair friendship")
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			repaired++
			continue
		}

		if err := r.Friendships.DeleteFriendship(ctx, orphan.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("friendshipID", orphan.ID).Warn("Failed to remove orphaned friendship")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}

	logrus.WithFields(logrus.Fields{
		"orphans":  len(orphans),
		"repaired": repaired,
		"removed":  removed,
	}).Info("Friendship reconciliation completed")
	return repaired, removed, firstErr
}

func (r *FriendshipReconciler) acceptedEitherWay(ctx context.Context, userA, userB string) (bool, error) {
	for _, id := range []string{models.RequestID(userA, userB), models.RequestID(userB, userA)} {
		request, err := r.Requests.GetRequest(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return false, err
		}
		if request.Status == models.RequestAccepted {
			return true, nil
		}
	}
	return false, nil
}
