package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProcessedEventRepository defines the interface for the batch consumer's
// processed-envelope markers. The queue delivers at least once; a marker
// written after persisting a batch and before acknowledging it keeps a
// replayed envelope from applying its counter delta twice.
type ProcessedEventRepository interface {
	FilterProcessed(ctx context.Context, ids []string) (map[string]bool, error)
	MarkProcessed(ctx context.Context, ids []string) error
}

// MongoProcessedEventRepository implements ProcessedEventRepository for MongoDB
type MongoProcessedEventRepository struct {
	collection *mongo.Collection
}

// NewMongoProcessedEventRepository creates a new MongoProcessedEventRepository
func NewMongoProcessedEventRepository(db *mongo.Database) *MongoProcessedEventRepository {
	return &MongoProcessedEventRepository{collection: db.Collection("processed_events")}
}

// FilterProcessed returns the subset of ids that already have a marker
func (r *MongoProcessedEventRepository) FilterProcessed(ctx context.Context, ids []string) (map[string]bool, error) {
	seen := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return seen, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		seen[doc.ID] = true
	}
	return seen, cursor.Err()
}

// MarkProcessed writes markers for ids. Markers that already exist are fine:
// a crash after marking but before acknowledging replays the write.
func (r *MongoProcessedEventRepository) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, bson.M{"_id": id, "processed_at": now})
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}
