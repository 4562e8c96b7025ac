// Package store defines the persistence contracts of the API and their
// MongoDB implementation.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrAdminExists is returned when an admin record already occupies the
	// single admin slot.
	ErrAdminExists = errors.New("admin already exists")
	// ErrStatusChanged is returned by a status compare-and-set that lost to a
	// concurrent update.
	ErrStatusChanged = errors.New("appointment status changed concurrently")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type AdminStore interface {
	// CreateAdmin inserts the single admin record or fails with ErrAdminExists.
	CreateAdmin(ctx context.Context, a *models.Admin) error
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindAdminByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

type DoctorStore interface {
	CreateDoctor(ctx context.Context, d *models.Doctor) error
	FindDoctorByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	FindDoctorsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Doctor, error)
	// ListDoctors returns every doctor, highest rating first.
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	UpdateDoctor(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error)
	DeleteDoctor(ctx context.Context, id primitive.ObjectID) error
	DoctorStats(ctx context.Context, topN int) (*models.DoctorStats, error)
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	FindAppointmentByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	// ListAppointmentsByUser returns the user's appointments, newest created first.
	ListAppointmentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error)
	// ListAppointments returns every appointment by appointment date ascending.
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	// UpdateAppointmentStatus moves id from status from to status to. It fails
	// with ErrNotFound when id is unknown and ErrStatusChanged when the stored
	// status is no longer from.
	UpdateAppointmentStatus(ctx context.Context, id primitive.ObjectID, from, to models.AppointmentStatus) (*models.Appointment, error)
	// AppointmentStats counts appointments in a single pass. Today counts
	// records created at or after since.
	AppointmentStats(ctx context.Context, since time.Time) (*models.AppointmentStats, error)
}

type ContactStore interface {
	CreateContact(ctx context.Context, c *models.Contact) error
	// ListContacts returns every message, newest first.
	ListContacts(ctx context.Context) ([]models.Contact, error)
	CountContacts(ctx context.Context) (int64, error)
}

// Store is the full persistence surface used by the API.
type Store interface {
	UserStore
	AdminStore
	DoctorStore
	AppointmentStore
	ContactStore
}
