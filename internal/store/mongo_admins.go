package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

// CreateAdmin relies on the unique bootstrapKey index: the first insert wins
// and every later one, concurrent or not, fails with ErrAdminExists.
func (s *MongoStore) CreateAdmin(ctx context.Context, a *models.Admin) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	a.BootstrapKey = models.AdminBootstrapKey
	if _, err := s.collection(adminsCollection).InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAdminExists
		}
		return err
	}
	return nil
}

func (s *MongoStore) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.findOne(ctx, adminsCollection, bson.M{"email": email}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) FindAdminByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	if err := s.findOne(ctx, adminsCollection, bson.M{"_id": id}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
