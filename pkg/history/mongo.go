package history

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/blueprint/pkg/engine"
)

// Defaults for the MongoDB backend.
const (
	DefaultDatabase   = "blueprint"
	DefaultCollection = "passes"
)

// Mongo stores reports as documents, one per pass, using the reports' bson
// tags. Indexes on pass_id (unique) and graph_hash/start are created on
// connect.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and prepares the collection.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{client: client, coll: client.Database(database).Collection(collection)}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pass_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "graph_hash", Value: 1}, {Key: "start", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (m *Mongo) Record(ctx context.Context, rep *engine.Report) error {
	if err := validate(rep); err != nil {
		return err
	}
	if _, err := m.coll.InsertOne(ctx, rep); err != nil {
		return fmt.Errorf("insert pass %s: %w", rep.PassID, err)
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, passID string) (*engine.Report, error) {
	var rep engine.Report
	err := m.coll.FindOne(ctx, bson.M{"pass_id": passID}).Decode(&rep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(passID)
	}
	if err != nil {
		return nil, fmt.Errorf("find pass %s: %w", passID, err)
	}
	return &rep, nil
}

func (m *Mongo) List(ctx context.Context, graphHash string, limit int) ([]*engine.Report, error) {
	filter := bson.M{}
	if graphHash != "" {
		filter["graph_hash"] = graphHash
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	var out []*engine.Report
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode passes: %w", err)
	}
	return out, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
