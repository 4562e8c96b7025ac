package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

func (s *MongoStore) CreateDoctor(ctx context.Context, d *models.Doctor) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	_, err := s.collection(doctorsCollection).InsertOne(ctx, d)
	return err
}

func (s *MongoStore) FindDoctorByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.findOne(ctx, doctorsCollection, bson.M{"_id": id}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) FindDoctorsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Doctor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var doctors []models.Doctor
	if err := s.findAll(ctx, doctorsCollection, bson.M{"_id": bson.M{"$in": ids}}, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (s *MongoStore) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}})
	doctors := []models.Doctor{}
	if err := s.findAll(ctx, doctorsCollection, bson.M{}, &doctors, opts); err != nil {
		return nil, err
	}
	return doctors, nil
}

func doctorUpdateDoc(u models.DoctorUpdate) bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Specialty != nil {
		set["specialty"] = *u.Specialty
	}
	if u.Experience != nil {
		set["experience"] = *u.Experience
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	if u.Patients != nil {
		set["patients"] = *u.Patients
	}
	if u.About != nil {
		set["about"] = *u.About
	}
	if u.ImageURL != nil {
		set["img"] = *u.ImageURL
	}
	return set
}

func (s *MongoStore) UpdateDoctor(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	if u.Empty() {
		return s.FindDoctorByID(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d models.Doctor
	err := s.collection(doctorsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": doctorUpdateDoc(u)}, opts).
		Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) DeleteDoctor(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection(doctorsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DoctorStats(ctx context.Context, topN int) (*models.DoctorStats, error) {
	total, err := s.collection(doctorsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$specialty"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: topN}},
	}
	cursor, err := s.collection(doctorsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	top := make([]models.SpecialtyCount, 0, topN)
	if err := cursor.All(ctx, &top); err != nil {
		return nil, err
	}
	return &models.DoctorStats{Total: total, TopSpecialties: top}, nil
}
