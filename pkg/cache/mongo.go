package cache

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoCollection is the collection entries are stored in.
const DefaultMongoCollection = "recipe_cache"

// MongoCache stores entries as documents with a TTL index on expires_at.
// MongoDB removes expired documents in the background about once a
// minute, so Get also checks expiry itself.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
	clock  Clock
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache connects to uri and prepares the collection in database.
func NewMongoCache(ctx context.Context, uri, database string) (*MongoCache, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, backendError(BackendMongo, "connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, backendError(BackendMongo, "connect", err)
	}

	c := &MongoCache{
		client: client,
		coll:   client.Database(database).Collection(DefaultMongoCollection),
	}
	if err := c.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, backendError(BackendMongo, "connect", err)
	}
	return c, nil
}

// WithClock sets the clock used for expiry checks.
func (c *MongoCache) WithClock(clock Clock) *MongoCache {
	c.clock = clock
	return c
}

func (c *MongoCache) ensureIndexes(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

// Get retrieves a value.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&e)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backendError(BackendMongo, "get", err)
	}
	if e.ExpiresAt != nil && !c.clock.Now().Before(*e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set upserts a value.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		exp := c.clock.Now().Add(ttl).UTC()
		e.ExpiresAt = &exp
	}
	_, err := c.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}}, e,
		options.Replace().SetUpsert(true))
	if err != nil {
		return backendError(BackendMongo, "set", err)
	}
	return nil
}

// Delete removes a value.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	if _, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return backendError(BackendMongo, "delete", err)
	}
	return nil
}

// Clear deletes every document in the collection.
func (c *MongoCache) Clear(ctx context.Context) error {
	if _, err := c.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return backendError(BackendMongo, "clear", err)
	}
	return nil
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// Name returns "mongo".
func (c *MongoCache) Name() string { return BackendMongo }

var (
	_ Cache   = (*MongoCache)(nil)
	_ Clearer = (*MongoCache)(nil)
)
