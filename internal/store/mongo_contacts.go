package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

func (s *MongoStore) CreateContact(ctx context.Context, c *models.Contact) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	_, err := s.collection(contactsCollection).InsertOne(ctx, c)
	return err
}

func (s *MongoStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	contacts := []models.Contact{}
	if err := s.findAll(ctx, contactsCollection, bson.M{}, &contacts, opts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *MongoStore) CountContacts(ctx context.Context) (int64, error) {
	return s.collection(contactsCollection).CountDocuments(ctx, bson.M{})
}
