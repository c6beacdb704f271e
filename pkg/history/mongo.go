package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/flamesplit/pkg/cache"
)

// MongoConfig holds connection settings for MongoStore.
type MongoConfig struct {
	URI        string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default MongoDB names.
const (
	DefaultDatabase   = "flamesplit"
	DefaultCollection = "splits"
)

// connectTimeout bounds the initial connection and ping.
const connectTimeout = 10 * time.Second

// MongoStore stores records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures a
// descending index on created_at.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

// Add inserts rec. Network failures are retried.
func (s *MongoStore) Add(ctx context.Context, rec Record) error {
	return cache.RetryWithBackoff(ctx, func() error {
		_, err := s.coll.InsertOne(ctx, rec)
		switch {
		case err == nil:
			return nil
		case mongo.IsNetworkError(err) || mongo.IsTimeout(err):
			return cache.Retryable(fmt.Errorf("insert record: %w: %w", cache.ErrNetwork, err))
		case mongo.IsDuplicateKeyError(err):
			// A retried insert that reached the server the first time.
			return nil
		default:
			return fmt.Errorf("insert record: %w", err)
		}
	})
}

// Recent returns up to n records, newest first.
func (s *MongoStore) Recent(ctx context.Context, n int) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit(n)))

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
