package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

func (s *MongoStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	a.UpdatedAt = a.CreatedAt
	_, err := s.collection(appointmentsCollection).InsertOne(ctx, a)
	return err
}

func (s *MongoStore) FindAppointmentByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.findOne(ctx, appointmentsCollection, bson.M{"_id": id}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) ListAppointmentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	apts := []models.Appointment{}
	if err := s.findAll(ctx, appointmentsCollection, bson.M{"user": userID}, &apts, opts); err != nil {
		return nil, err
	}
	return apts, nil
}

func (s *MongoStore) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	apts := []models.Appointment{}
	if err := s.findAll(ctx, appointmentsCollection, bson.M{}, &apts, opts); err != nil {
		return nil, err
	}
	return apts, nil
}

func (s *MongoStore) UpdateAppointmentStatus(ctx context.Context, id primitive.ObjectID, from, to models.AppointmentStatus) (*models.Appointment, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": s.now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a models.Appointment
	err := s.collection(appointmentsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := s.collection(appointmentsCollection).CountDocuments(ctx, bson.M{"_id": id})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type statusBucket struct {
	Status models.AppointmentStatus `bson:"_id"`
	Count  int64                    `bson:"count"`
	Today  int64                    `bson:"today"`
}

// AppointmentStats groups the collection by status once; totals and the
// created-since count are folded from the buckets.
func (s *MongoStore) AppointmentStats(ctx context.Context, since time.Time) (*models.AppointmentStats, error) {
	createdSince := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$gte", Value: bson.A{"$createdAt", since}}}, 1, 0,
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "today", Value: bson.D{{Key: "$sum", Value: createdSince}}},
		}}},
	}
	cursor, err := s.collection(appointmentsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []statusBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return foldStatusBuckets(buckets), nil
}

func foldStatusBuckets(buckets []statusBucket) *models.AppointmentStats {
	stats := &models.AppointmentStats{}
	for _, b := range buckets {
		stats.Total += b.Count
		stats.Today += b.Today
		stats.ByStatus.Add(b.Status, b.Count)
	}
	return stats
}
