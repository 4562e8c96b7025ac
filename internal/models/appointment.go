package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

var (
	ErrUnknownStatus     = errors.New("unknown appointment status")
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// Terminal reports whether no further transition is allowed out of s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CanTransition reports whether an appointment in status s may move to next.
// Pending is the only non-terminal state.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) error {
	if _, err := ParseAppointmentStatus(string(next)); err != nil {
		return err
	}
	if s != StatusPending || next == StatusPending {
		return ErrInvalidTransition
	}
	return nil
}

// Appointment is created only by booking. DoctorName is a snapshot of the
// doctor's name at booking time and is never refreshed from the catalogue.
type Appointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DoctorID    primitive.ObjectID `bson:"doctor" json:"doctorId"`
	DoctorName  string             `bson:"doctorName" json:"doctorName"`
	PatientName string             `bson:"patientName" json:"patientName"`
	Phone       string             `bson:"phone" json:"phone"`
	Email       string             `bson:"email" json:"email"`
	Date        time.Time          `bson:"date" json:"date"`
	Time        string             `bson:"time" json:"time"`
	Message     string             `bson:"message" json:"message"`
	Status      AppointmentStatus  `bson:"status" json:"status"`
	UserID      primitive.ObjectID `bson:"user" json:"userId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentView is an appointment joined with reduced projections of the
// records it references. Either projection is nil when the record is gone.
type AppointmentView struct {
	Appointment
	Doctor *DoctorSummary `json:"doctor,omitempty"`
	User   *UserSummary   `json:"user,omitempty"`
}

type StatusCounts struct {
	Pending   int64 `json:"Pending"`
	Confirmed int64 `json:"Confirmed"`
	Cancelled int64 `json:"Cancelled"`
}

func (c *StatusCounts) Add(s AppointmentStatus, n int64) {
	switch s {
	case StatusPending:
		c.Pending += n
	case StatusConfirmed:
		c.Confirmed += n
	case StatusCancelled:
		c.Cancelled += n
	}
}

type AppointmentStats struct {
	Total    int64        `json:"total"`
	ByStatus StatusCounts `json:"byStatus"`
	Today    int64        `json:"today"`
}
