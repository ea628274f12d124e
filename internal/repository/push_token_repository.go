package repository

import (
	"context"
	"fmt"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PushTokenRepository reads device tokens registered by the mobile client.
type PushTokenRepository struct {
	collection *mongo.Collection
}

func NewPushTokenRepository(db *mongo.Database) *PushTokenRepository {
	return &PushTokenRepository{
		collection: db.Collection("user_push_tokens"),
	}
}

// GetToken returns the user's push token, or ErrNotFound when none is registered.
func (r *PushTokenRepository) GetToken(ctx context.Context, userID string) (string, error) {
	var token models.PushToken
	if err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to find push token: %w", notFound(err))
	}
	if token.Token == "" {
		return "", ErrNotFound
	}
	return token.Token, nil
}
