package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRepository stores friend requests keyed by "from_to".
type FriendRepository struct {
	collection *mongo.Collection
}

func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection("friend_requests"),
	}
}

// CreateRequest writes the request under its deterministic ID, replacing whatever was there.
func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": req.ID},
		req,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to send friend request: %w", err)
	}
	return nil
}

func (r *FriendRepository) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request: %w", notFound(err))
	}
	return &request, nil
}

func (r *FriendRepository) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus, respondedAt time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "respondedAt": respondedAt}},
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("failed to update request status: %w", ErrNotFound)
	}
	return nil
}

func (r *FriendRepository) DeleteRequest(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return nil
}

// GetIncomingPending returns the pending requests addressed to the user, newest first.
func (r *FriendRepository) GetIncomingPending(ctx context.Context, toUserID string) ([]models.FriendRequest, error) {
	filter := bson.M{"toUserId": toUserID, "status": models.RequestPending}
	return r.find(ctx, filter)
}

// GetSentRequests returns every request the user has sent, whatever its status.
func (r *FriendRepository) GetSentRequests(ctx context.Context, fromUserID string) ([]models.FriendRequest, error) {
	return r.find(ctx, bson.M{"fromUserId": fromUserID})
}

func (r *FriendRepository) find(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode friend requests: %w", err)
	}
	return requests, nil
}
