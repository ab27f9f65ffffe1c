package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"majin/pkg/types"
)

const defaultOpTimeout = 10 * time.Second

var _ Store = (*Mongo)(nil)

// modelDoc is the stored shape of a ModelConfig. The content type lives under
// "type" to stay compatible with existing collections.
type modelDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Provider    string             `bson:"provider"`
	APIKey      string             `bson:"apiKey"`
	ContentType string             `bson:"type"`
	Description string             `bson:"description"`
	Active      bool               `bson:"active"`
}

func toDoc(c types.ModelConfig) modelDoc {
	return modelDoc{
		Name:        c.Name,
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		ContentType: string(c.ContentType),
		Description: c.Description,
		Active:      c.Active,
	}
}

func (d modelDoc) config() types.ModelConfig {
	return types.ModelConfig{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Provider:    d.Provider,
		APIKey:      d.APIKey,
		ContentType: types.ContentType(d.ContentType),
		Description: d.Description,
		Active:      d.Active,
	}
}

// Mongo is a Store over one MongoDB collection. The client is owned by the
// caller and shared with other stores.
type Mongo struct {
	client    *mongo.Client
	coll      *mongo.Collection
	opTimeout time.Duration
}

// MongoOptions configures NewMongo.
type MongoOptions struct {
	Database   string
	Collection string
	// OpTimeout bounds each operation (10s when zero).
	OpTimeout time.Duration
}

// NewMongo binds a registry to client and ensures the unique partial index on
// active names.
func NewMongo(ctx context.Context, client *mongo.Client, opts MongoOptions) (*Mongo, error) {
	if opts.Collection == "" {
		opts.Collection = "models"
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	m := &Mongo{
		client:    client,
		coll:      client.Database(opts.Database).Collection(opts.Collection),
		opTimeout: opts.OpTimeout,
	}
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("active_name_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "active", Value: true}}),
	})
	if err != nil {
		return nil, fmt.Errorf("create models index: %w", err)
	}
	return m, nil
}

func (m *Mongo) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.opTimeout)
}

func (m *Mongo) Insert(ctx context.Context, cfg types.ModelConfig) (string, error) {
	if err := Validate(cfg); err != nil {
		return "", err
	}
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	if cfg.Active {
		if taken, err := m.activeNameTaken(ctx, cfg.Name, primitive.NilObjectID); err != nil {
			return "", err
		} else if taken {
			return "", ErrDuplicateName
		}
	}
	res, err := m.coll.InsertOne(ctx, toDoc(cfg))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateName
		}
		return "", fmt.Errorf("insert model: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert model: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (m *Mongo) Update(ctx context.Context, id string, patch types.ModelPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	var cur modelDoc
	if err := m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&cur); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("load model: %w", err)
	}
	next := patch.Apply(cur.config())
	if err := Validate(next); err != nil {
		return err
	}
	if next.Active {
		if taken, err := m.activeNameTaken(ctx, next.Name, oid); err != nil {
			return err
		} else if taken {
			return ErrDuplicateName
		}
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": toDoc(next)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update model: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) List(ctx context.Context) ([]types.ModelConfig, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	cur, err := m.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	var docs []modelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	out := make([]types.ModelConfig, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.config())
	}
	return out, nil
}

func (m *Mongo) FindActive(ctx context.Context, name string) (types.ModelConfig, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	var d modelDoc
	err := m.coll.FindOne(ctx, bson.M{"name": name, "active": true}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.ModelConfig{}, ErrNotFound
		}
		return types.ModelConfig{}, fmt.Errorf("find model %q: %w", name, err)
	}
	return d.config(), nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) activeNameTaken(ctx context.Context, name string, except primitive.ObjectID) (bool, error) {
	filter := bson.M{"name": name, "active": true}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}
	n, err := m.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check duplicate name: %w", err)
	}
	return n > 0, nil
}
