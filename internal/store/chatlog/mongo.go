package chatlog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chatlog"
)

// CollectionName is the MongoDB collection holding chat logs.
const CollectionName = "chat_logs"

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
	log    *zap.Logger
}

// NewMongoStore connects, pings and ensures indexes.
func NewMongoStore(ctx context.Context, uri, database string, log *zap.Logger) (*MongoStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := &MongoStore{
		client: client,
		col:    client.Database(database).Collection(CollectionName),
		log:    log.With(zap.String("module", "chatlog")),
	}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	store.log.Info("mongo chat log store ready", zap.String("database", database))
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_created_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure chat log indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Append(ctx context.Context, entry chatlog.Entry) error {
	if _, err := s.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string, limit int) ([]chatlog.Entry, error) {
	return s.find(ctx, bson.D{{Key: "userId", Value: userID}}, limit)
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]chatlog.Entry, error) {
	return s.find(ctx, bson.D{}, limit)
}

func (s *MongoStore) find(ctx context.Context, filter bson.D, limit int) ([]chatlog.Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	findOpts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find chat logs: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]chatlog.Entry, 0, limit)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode chat logs: %w", err)
	}
	return entries, nil
}

func (s *MongoStore) Stats(ctx context.Context) (chatlog.Statistics, error) {
	stats := chatlog.Statistics{BySource: make(map[string]int64)}

	users, err := s.col.Distinct(ctx, "userId", bson.D{})
	if err != nil {
		return stats, fmt.Errorf("distinct chat log users: %w", err)
	}
	stats.UniqueUsers = int64(len(users))

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$source"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "latency", Value: bson.D{{Key: "$sum", Value: "$latencyMs"}}},
		}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return stats, fmt.Errorf("aggregate chat logs: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Source  string `bson:"_id"`
		Count   int64  `bson:"count"`
		Latency int64  `bson:"latency"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return stats, fmt.Errorf("decode chat log stats: %w", err)
	}

	var latency int64
	for _, group := range groups {
		stats.BySource[group.Source] = group.Count
		stats.TotalMessages += group.Count
		latency += group.Latency
	}
	finishStats(&stats, latency)
	return stats, nil
}
