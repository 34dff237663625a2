package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"history-quiz/internal/config"
	"history-quiz/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// progressCollection is the part of *mongo.Collection the store uses.
type progressCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
}

// MongoStore keeps one document per (user, topic) with a sub-document per
// checkpoint. Saves use $set so other checkpoints are preserved.
type MongoStore struct {
	col progressCollection
	now func() time.Time
}

func NewMongoStore(col progressCollection) *MongoStore {
	return &MongoStore{col: col, now: time.Now}
}

// ConnectMongo opens a client, pings it and returns the progress collection.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Collection, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetRetryWrites(true)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, client.Database(cfg.Database).Collection(cfg.Collection), nil
}

func documentID(userID, topic string) string {
	return userID + "/" + topic
}

func (s *MongoStore) SaveCheckpoint(ctx context.Context, rec domain.CheckpointRecord) error {
	key, ok := rec.Stage.CheckpointKey()
	if !ok {
		return domain.NewInvalidInputError(fmt.Sprintf("stage %s has no checkpoint", rec.Stage))
	}

	now := s.now()
	filter := bson.M{"_id": documentID(rec.UserID, rec.Topic)}
	update := bson.M{"$set": bson.M{
		"user_id":    rec.UserID,
		"topic":      rec.Topic,
		key:          rec.Payload,
		"updated_at": now,
	}}

	if _, err := s.col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to save %s for %s: %w", key, rec.Topic, err)
	}
	return nil
}

func (s *MongoStore) LoadProgress(ctx context.Context, userID, topic string) (*domain.ProgressDocument, error) {
	var doc domain.ProgressDocument
	err := s.col.FindOne(ctx, bson.M{"_id": documentID(userID, topic)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("No stored progress for %s", topic))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress for %s: %w", topic, err)
	}
	return &doc, nil
}
