package repository

import (
	"context"
	"regexp"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeWatcher turns change streams on the friend collections into per-user
// change signals. Change streams require a replica set.
type ChangeWatcher struct {
	collections []*mongo.Collection
}

func NewChangeWatcher(db *mongo.Database) *ChangeWatcher {
	return &ChangeWatcher{
		collections: []*mongo.Collection{
			db.Collection("friend_requests"),
			db.Collection("friends"),
		},
	}
}

// userChangePipeline matches, on the server, changes to requests and
// friendships that name userID. Deletes carry no document, so they are matched
// on the pair ID instead.
func userChangePipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
			"$or": bson.A{
				bson.M{"fullDocument.fromUserId": userID},
				bson.M{"fullDocument.toUserId": userID},
				bson.M{"fullDocument.userId": userID},
				bson.M{"fullDocument.friendId": userID},
				bson.M{
					"operationType":   "delete",
					"documentKey._id": bson.M{"$regex": pairIDPattern(userID)},
				},
			},
		}}},
		{{Key: "$project", Value: bson.M{"_id": 1, "operationType": 1}}},
	}
}

// pairIDPattern matches "<userID>_x" and "x_<userID>". User IDs never contain
// '_', so the split is unambiguous.
func pairIDPattern(userID string) string {
	quoted := regexp.QuoteMeta(userID)
	return "^" + quoted + "_[^_]+$|^[^_]+_" + quoted + "$"
}

// Watch signals on the returned channel whenever a request or friendship
// involving userID changes. The channel is closed once ctx is done and every
// stream has stopped.
func (w *ChangeWatcher) Watch(ctx context.Context, userID string) (<-chan struct{}, error) {
	pipeline := userChangePipeline(userID)
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	var streams []*mongo.ChangeStream
	for _, coll := range w.collections {
		stream, err := coll.Watch(ctx, pipeline, opts)
		if err != nil {
			for _, s := range streams {
				s.Close(context.Background())
			}
			return nil, err
		}
		streams = append(streams, stream)
	}

	out := make(chan struct{}, 1)
	var wg sync.WaitGroup
	for _, stream := range streams {
		wg.Add(1)
		go func(stream *mongo.ChangeStream) {
			defer wg.Done()
			defer stream.Close(context.Background())

			for stream.Next(ctx) {
				select {
				case out <- struct{}{}:
				default:
				}
			}
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				logrus.WithError(err).WithField("userID", userID).Warn("Change stream stopped")
			}
		}(stream)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}
