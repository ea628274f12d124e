package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TokenSource is the authoritative push token lookup.
type TokenSource interface {
	GetToken(ctx context.Context, userID string) (string, error)
}

const pushTokenKeyPrefix = "push:token:"

// PushTokenCache is a read-through Redis cache in front of the push token collection.
// Redis failures fall through to the source.
type PushTokenCache struct {
	client *redis.Client
	source TokenSource
	ttl    time.Duration
}

func NewPushTokenCache(client *redis.Client, source TokenSource, ttl time.Duration) *PushTokenCache {
	return &PushTokenCache{client: client, source: source, ttl: ttl}
}

func (c *PushTokenCache) GetToken(ctx context.Context, userID string) (string, error) {
	key := pushTokenKeyPrefix + userID

	token, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return token, nil
	}
	if err != redis.Nil {
		logrus.WithError(err).WithField("userID", userID).Warn("Push token cache read failed")
	}

	token, err = c.source.GetToken(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, token, c.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("userID", userID).Warn("Push token cache write failed")
	}
	return token, nil
}

// Invalidate drops a cached token, e.g. after the gateway reports it unregistered.
func (c *PushTokenCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, pushTokenKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate push token for %s: %w", userID, err)
	}
	return nil
}
