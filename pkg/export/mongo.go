package export

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aarforge/aarforge/pkg/errors"
)

const (
	defaultDatabase   = "aarforge"
	defaultCollection = "snapshots"
)

// MongoStore persists snapshots in a MongoDB collection. Use it when
// snapshots are shared across machines; local workflows use [MemoryStore]
// or file output instead.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the MongoDB instance at uri and targets the
// aarforge.snapshots collection.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(defaultDatabase).Collection(defaultCollection),
	}, nil
}

// Save implements SnapshotStore. Saving the same ID twice replaces the
// stored snapshot.
func (s *MongoStore) Save(ctx context.Context, snap Snapshot) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, snap, opts); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save snapshot %s", snap.ID)
	}
	return nil
}

// Get implements SnapshotStore.
func (s *MongoStore) Get(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return Snapshot{}, errors.New(errors.ErrCodeNotFound, "snapshot %s not found", id)
	}
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInternal, err, "load snapshot %s", id)
	}
	return snap, nil
}

// List implements SnapshotStore.
func (s *MongoStore) List(ctx context.Context) ([]Snapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list snapshots")
	}
	defer cur.Close(ctx)

	var out []Snapshot
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode snapshots")
	}
	return out, nil
}

// Close implements SnapshotStore.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
