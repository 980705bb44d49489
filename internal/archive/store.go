// Package archive moves the legacy Mongo post archive into Postgres. The
// collection is only read and flagged here; nothing in it is ever deleted.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nevisai/platform/internal/models"
)

// Store reads and flags documents in the legacy posts collection.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Unmigrated returns the oldest documents not yet copied over, up to limit.
func (s *Store) Unmigrated(limit int) ([]models.LegacyPost, error) {
	collection := s.db.Collection("posts")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter := bson.M{"migrated": bson.M{"$ne": true}}
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find unmigrated posts: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.LegacyPost
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode unmigrated posts: %w", err)
	}
	return out, nil
}

// MarkMigrated flags a batch of documents as copied.
func (s *Store) MarkMigrated(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	collection := s.db.Collection("posts")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": ids}}
	update := bson.M{"$set": bson.M{"migrated": true}}

	_, err := collection.UpdateMany(ctx, filter, update)
	return err
}

// Counts reports how much of the archive exists and how much is already
// flagged.
func (s *Store) Counts() (total, migrated int64, err error) {
	collection := s.db.Collection("posts")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	total, err = collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("count posts: %w", err)
	}
	migrated, err = collection.CountDocuments(ctx, bson.M{"migrated": true})
	if err != nil {
		return 0, 0, fmt.Errorf("count migrated posts: %w", err)
	}
	return total, migrated, nil
}
