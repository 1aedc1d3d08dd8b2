package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/errors"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultCollection is used when MongoConfig.Collection is empty.
const DefaultCollection = "charts"

// MongoStore stores charts as documents keyed by ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	clock  clockwork.Clock
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo URI and database are required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		clock:  clockwork.NewRealClock(),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, c *chart.Chart) (string, error) {
	if err := prepare(c, s.clock); err != nil {
		return "", err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("save chart %s: %w", c.ID, err)
	}
	return c.ID, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*chart.Chart, error) {
	if err := errors.ValidateChartID(id); err != nil {
		return nil, err
	}
	var c chart.Chart
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get chart %s: %w", id, err)
	}
	return &c, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateChartID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete chart %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// List computes line and point counts on the server so geometry is never
// transferred.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Entry, error) {
	lines := bson.M{"$ifNull": bson.A{"$lines", bson.A{}}}
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(listLimit(limit))}},
		{{Key: "$project", Value: bson.M{
			"projection": 1,
			"created_at": 1,
			"lines":      bson.M{"$size": lines},
			"points": bson.M{"$sum": bson.M{"$map": bson.M{
				"input": lines,
				"as":    "l",
				"in":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$$l.points", bson.A{}}}},
			}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	out := []Entry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode charts: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
