package repository

import (
	"context"
	"fmt"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendshipRepository stores the mirrored friendship documents ("owner_friend").
type FriendshipRepository struct {
	collection      *mongo.Collection
	useTransactions bool
}

// NewFriendshipRepository creates the repository. With useTransactions the pair
// writes run inside a multi-document transaction, which needs a replica set.
func NewFriendshipRepository(db *mongo.Database, useTransactions bool) *FriendshipRepository {
	return &FriendshipRepository{
		collection:      db.Collection("friends"),
		useTransactions: useTransactions,
	}
}

func (r *FriendshipRepository) GetFriendship(ctx context.Context, ownerID, friendID string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.collection.FindOne(ctx, bson.M{"_id": models.FriendshipID(ownerID, friendID)}).Decode(&friendship)
	if err != nil {
		return nil, fmt.Errorf("failed to find friendship: %w", notFound(err))
	}
	return &friendship, nil
}

// GetFriendsByUser lists the friendships owned by the user.
func (r *FriendshipRepository) GetFriendsByUser(ctx context.Context, userID string) ([]models.Friendship, error) {
	opts := options.Find().SetSort(bson.D{{Key: "friendName", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve friends: %w", err)
	}
	defer cursor.Close(ctx)

	friends := []models.Friendship{}
	if err := cursor.All(ctx, &friends); err != nil {
		return nil, fmt.Errorf("failed to decode friends: %w", err)
	}
	return friends, nil
}

// UpsertFriendship writes one half of a pair. Used by the pair write and by repairs.
func (r *FriendshipRepository) UpsertFriendship(ctx context.Context, f *models.Friendship) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": f.ID}, f, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write friendship %s: %w", f.ID, err)
	}
	return nil
}

func (r *FriendshipRepository) DeleteFriendship(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete friendship %s: %w", id, err)
	}
	return nil
}

// CreatePair writes both halves of a friendship. Re-running it with the same
// data leaves the collection unchanged.
func (r *FriendshipRepository) CreatePair(ctx context.Context, a, b *models.Friendship) error {
	return r.inPair(ctx, func(ctx context.Context) error {
		if err := r.UpsertFriendship(ctx, a); err != nil {
			return err
		}
		return r.UpsertFriendship(ctx, b)
	})
}

// DeletePair removes both halves of the friendship between two users.
func (r *FriendshipRepository) DeletePair(ctx context.Context, userA, userB string) error {
	return r.inPair(ctx, func(ctx context.Context) error {
		filter := bson.M{"_id": bson.M{"$in": []string{
			models.FriendshipID(userA, userB),
			models.FriendshipID(userB, userA),
		}}}
		if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
			return fmt.Errorf("failed to remove friendship: %w", err)
		}
		return nil
	})
}

func (r *FriendshipRepository) inPair(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.useTransactions {
		return fn(ctx)
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// FindOrphans returns friendships whose mirror document does not exist.
func (r *FriendshipRepository) FindOrphans(ctx context.Context, limit int64) ([]models.Friendship, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"mirrorId": bson.M{"$concat": bson.A{"$friendId", "_", "$userId"}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "friends",
			"localField":   "mirrorId",
			"foreignField": "_id",
			"as":           "mirror",
		}}},
		{{Key: "$match", Value: bson.M{"mirror": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"mirror": 0, "mirrorId": 0}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for orphaned friendships: %w", err)
	}
	defer cursor.Close(ctx)

	var orphans []models.Friendship
	if err := cursor.All(ctx, &orphans); err != nil {
		return nil, fmt.Errorf("failed to decode orphaned friendships: %w", err)
	}
	logrus.WithField("count", len(orphans)).Debug("Orphaned friendship scan finished")
	return orphans, nil
}
