package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection        = "users"
	adminsCollection       = "admins"
	doctorsCollection      = "doctors"
	appointmentsCollection = "appointments"
	contactsCollection     = "contacts"
)

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	DB  *mongo.Database
	now func() time.Time
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{DB: db, now: time.Now}
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the store's invariants rely on:
// one account per email and at most one admin.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		adminsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "bootstrapKey", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		appointmentsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
	}
	for coll, specs := range indexes {
		if _, err := s.DB.Collection(coll).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) collection(name string) *mongo.Collection {
	return s.DB.Collection(name)
}

// findOne decodes the first match of filter into out, mapping no match to ErrNotFound.
func (s *MongoStore) findOne(ctx context.Context, coll string, filter interface{}, out interface{}) error {
	err := s.collection(coll).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// findAll decodes every match of filter into out (a pointer to a slice).
func (s *MongoStore) findAll(ctx context.Context, coll string, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	cursor, err := s.collection(coll).Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
