package results

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"majin/pkg/types"
)

var _ Store = (*Mongo)(nil)

// Mongo stores batches in one collection keyed by the batch uuid.
type Mongo struct {
	coll      *mongo.Collection
	opTimeout time.Duration
	now       func() time.Time
}

// NewMongo binds a result store to client.Database(database).Collection(collection).
func NewMongo(client *mongo.Client, database, collection string, opTimeout time.Duration) *Mongo {
	if collection == "" {
		collection = "results"
	}
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &Mongo{
		coll:      client.Database(database).Collection(collection),
		opTimeout: opTimeout,
		now:       time.Now,
	}
}

func (m *Mongo) Save(ctx context.Context, b types.ResultBatch) (string, error) {
	b, err := prepare(b, m.now)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	if _, err := m.coll.InsertOne(ctx, b); err != nil {
		return "", fmt.Errorf("insert results: %w", err)
	}
	return b.ID, nil
}

func (m *Mongo) List(ctx context.Context, limit int) ([]types.ResultBatch, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := []types.ResultBatch{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return out, nil
}
