package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/scene"
)

const (
	mongoDatabase   = "easel"
	mongoCollection = "documents"
)

// MongoStore persists documents in a MongoDB collection, keyed by the
// document id as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the MongoDB deployment named by the URI
// (mongodb://host:port) and verifies the connection.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "mongo uri %q", uri)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo ping")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(mongoDatabase).Collection(mongoCollection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, doc *scene.Document) error {
	if err := validateDoc(doc); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo save %q", doc.ID)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, id string) (*scene.Document, error) {
	var doc scene.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo load %q", id)
	}
	return &doc, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	// Objects are projected away: listings only need metadata.
	cur, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"objects": 0}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo list")
	}
	defer cur.Close(ctx)

	out := []Info{}
	for cur.Next(ctx) {
		var doc scene.Document
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		out = append(out, InfoOf(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo list")
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "mongo delete %q", id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
