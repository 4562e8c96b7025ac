package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

func duplicateKeyResponse() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error",
	})
}

func TestMongoStore_Users(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create user", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &models.User{Name: "Alice", Email: "alice@x.com"}
		require.NoError(mt, s.CreateUser(ctx, u))
		assert.False(mt, u.ID.IsZero())
		assert.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := s.CreateUser(ctx, &models.User{Email: "alice@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicateEmail)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "doctorcare.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Alice"},
			{Key: "email", Value: "alice@x.com"},
			{Key: "password", Value: "hash"},
		}))

		u, err := s.FindUserByEmail(ctx, "alice@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, u.ID)
		assert.Equal(mt, "hash", u.Password)
	})

	mt.Run("find by email missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "doctorcare.users", mtest.FirstBatch))

		_, err := s.FindUserByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find by ids skips empty", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		users, err := s.FindUsersByIDs(ctx, nil)
		assert.NoError(mt, err)
		assert.Empty(mt, users)
	})
}

func TestMongoStore_AdminSingleton(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("first admin", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a := &models.Admin{Name: "Admin", Email: "admin@x.com"}
		require.NoError(mt, s.CreateAdmin(ctx, a))
		assert.Equal(mt, models.AdminBootstrapKey, a.BootstrapKey)
	})

	mt.Run("second admin rejected", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(duplicateKeyResponse())

		err := s.CreateAdmin(ctx, &models.Admin{Name: "Admin", Email: "other@x.com"})
		assert.ErrorIs(mt, err, ErrAdminExists)
	})
}

func TestMongoStore_UpdateAppointmentStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	id := primitive.NewObjectID()

	mt.Run("updated", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "_id", Value: id}, {Key: "status", Value: "Confirmed"}}},
		})

		a, err := s.UpdateAppointmentStatus(ctx, id, models.StatusPending, models.StatusConfirmed)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusConfirmed, a.Status)
	})

	mt.Run("lost race", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, "doctorcare.appointments", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		_, err := s.UpdateAppointmentStatus(ctx, id, models.StatusPending, models.StatusConfirmed)
		assert.ErrorIs(mt, err, ErrStatusChanged)
	})

	mt.Run("unknown id", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, "doctorcare.appointments", mtest.FirstBatch),
		)

		_, err := s.UpdateAppointmentStatus(ctx, id, models.StatusPending, models.StatusConfirmed)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoStore_AppointmentStats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("folds buckets", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "doctorcare.appointments", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Pending"}, {Key: "count", Value: int64(3)}, {Key: "today", Value: int64(2)}},
			bson.D{{Key: "_id", Value: "Confirmed"}, {Key: "count", Value: int64(1)}, {Key: "today", Value: int64(0)}},
		))

		stats, err := s.AppointmentStats(context.Background(), time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, int64(4), stats.Total)
		assert.Equal(mt, int64(2), stats.Today)
		assert.Equal(mt, models.StatusCounts{Pending: 3, Confirmed: 1}, stats.ByStatus)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "doctorcare.appointments", mtest.FirstBatch))

		stats, err := s.AppointmentStats(context.Background(), time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, &models.AppointmentStats{}, stats)
	})
}

func TestMongoStore_DeleteDoctor(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := s.DeleteDoctor(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("deleted", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})

		err := s.DeleteDoctor(context.Background(), primitive.NewObjectID())
		assert.NoError(mt, err)
	})
}

func TestMongoStore_EmptyListsEncodeAsArrays(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("doctors", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "doctorcare.doctors", mtest.FirstBatch))

		doctors, err := s.ListDoctors(context.Background())
		require.NoError(mt, err)
		require.NotNil(mt, doctors)
		out, _ := json.Marshal(doctors)
		assert.Equal(mt, "[]", string(out))
	})

	mt.Run("contacts", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "doctorcare.contacts", mtest.FirstBatch))

		contacts, err := s.ListContacts(context.Background())
		require.NoError(mt, err)
		out, _ := json.Marshal(contacts)
		assert.Equal(mt, "[]", string(out))
	})

	mt.Run("appointments", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "doctorcare.appointments", mtest.FirstBatch))

		apts, err := s.ListAppointments(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, apts)
		assert.Empty(mt, apts)
	})
}
