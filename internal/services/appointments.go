package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/store"
)

const dateLayout = "2006-01-02"

type AppointmentService struct {
	appointments store.AppointmentStore
	doctors      store.DoctorStore
	users        store.UserStore
	notifier     Notifier
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewAppointmentService(appointments store.AppointmentStore, doctors store.DoctorStore, users store.UserStore, notifier Notifier, log logrus.FieldLogger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		doctors:      doctors,
		users:        users,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

type BookingRequest struct {
	DoctorID    string
	PatientName string
	Phone       string
	Email       string
	Date        string
	Time        string
	Message     string
}

// parseDate accepts a calendar date or a full RFC3339 timestamp and returns
// the calendar day at UTC midnight.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func (r *BookingRequest) validate() (time.Time, error) {
	r.PatientName = strings.TrimSpace(r.PatientName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.Time = strings.TrimSpace(r.Time)
	if r.PatientName == "" || r.Phone == "" || r.Email == "" || r.Date == "" || r.Time == "" {
		return time.Time{}, BadRequest("patientName, phone, email, date and time are required")
	}
	date, err := parseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return time.Time{}, BadRequest("Invalid date, use YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", r.Time); err != nil {
		return time.Time{}, BadRequest("Invalid time, use HH:MM")
	}
	return date, nil
}

// Book creates a Pending appointment for the calling user. The doctor must
// exist at booking time; its name is copied onto the appointment. Slots are
// not checked for conflicts.
func (s *AppointmentService) Book(ctx context.Context, caller models.Principal, req BookingRequest) (*models.Appointment, error) {
	if !caller.IsUser() {
		return nil, Forbidden("Only patients can book appointments")
	}
	date, err := req.validate()
	if err != nil {
		return nil, err
	}

	doctor, err := s.resolveDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	apt := &models.Appointment{
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Email:       req.Email,
		Date:        date,
		Time:        req.Time,
		Message:     strings.TrimSpace(req.Message),
		Status:      models.StatusPending,
		UserID:      caller.ID,
		CreatedAt:   s.now(),
	}
	if err := s.appointments.CreateAppointment(ctx, apt); err != nil {
		return nil, Internal("failed to create appointment", err)
	}
	s.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID.Hex(),
		"doctor_id":      apt.DoctorID.Hex(),
		"user_id":        apt.UserID.Hex(),
	}).Info("Appointment booked")

	s.notifier.AppointmentBooked(apt)
	return apt, nil
}

func (s *AppointmentService) resolveDoctor(ctx context.Context, rawID string) (*models.Doctor, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(rawID))
	if err != nil {
		return nil, NotFound("Doctor not found")
	}
	doctor, err := s.doctors.FindDoctorByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("Doctor not found")
	}
	if err != nil {
		return nil, Internal("failed to find doctor", err)
	}
	return doctor, nil
}

// ListMine returns the caller's appointments, newest first, each joined with
// the doctor's name, specialty and image.
func (s *AppointmentService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.AppointmentView, error) {
	apts, err := s.appointments.ListAppointmentsByUser(ctx, userID)
	if err != nil {
		return nil, Internal("failed to list appointments", err)
	}
	doctors, err := s.doctorIndex(ctx, apts)
	if err != nil {
		return nil, err
	}

	views := make([]models.AppointmentView, 0, len(apts))
	for _, a := range apts {
		v := models.AppointmentView{Appointment: a}
		if d, ok := doctors[a.DoctorID]; ok {
			v.Doctor = &models.DoctorSummary{ID: d.ID, Name: d.Name, Specialty: d.Specialty, Image: d.ImageURL}
		}
		views = append(views, v)
	}
	return views, nil
}

// ListAll returns every appointment by appointment date, earliest first,
// joined with doctor and patient summaries. Callers must be admins.
func (s *AppointmentService) ListAll(ctx context.Context, caller models.Principal) ([]models.AppointmentView, error) {
	if !caller.IsAdmin() {
		return nil, Forbidden("Admin access required")
	}
	apts, err := s.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, Internal("failed to list appointments", err)
	}
	doctors, err := s.doctorIndex(ctx, apts)
	if err != nil {
		return nil, err
	}
	users, err := s.userIndex(ctx, apts)
	if err != nil {
		return nil, err
	}

	views := make([]models.AppointmentView, 0, len(apts))
	for _, a := range apts {
		v := models.AppointmentView{Appointment: a}
		if d, ok := doctors[a.DoctorID]; ok {
			v.Doctor = &models.DoctorSummary{ID: d.ID, Name: d.Name, Specialty: d.Specialty}
		}
		if u, ok := users[a.UserID]; ok {
			v.User = u.Summary()
		}
		views = append(views, v)
	}
	return views, nil
}

// Transition moves an appointment out of Pending. Only admins may do it and
// Confirmed and Cancelled are final.
func (s *AppointmentService) Transition(ctx context.Context, caller models.Principal, rawID string, rawStatus string) (*models.Appointment, error) {
	if !caller.IsAdmin() {
		return nil, Forbidden("Admin access required")
	}
	next, err := models.ParseAppointmentStatus(strings.TrimSpace(rawStatus))
	if err != nil {
		return nil, BadRequest("status must be one of Pending, Confirmed, Cancelled")
	}
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, NotFound("Appointment not found")
	}

	current, err := s.appointments.FindAppointmentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("Appointment not found")
	}
	if err != nil {
		return nil, Internal("failed to find appointment", err)
	}
	if err := current.Status.CanTransition(next); err != nil {
		return nil, Conflict("Cannot change appointment from " + string(current.Status) + " to " + string(next))
	}

	updated, err := s.appointments.UpdateAppointmentStatus(ctx, id, current.Status, next)
	switch {
	case errors.Is(err, store.ErrStatusChanged):
		return nil, Conflict("Appointment was updated concurrently")
	case errors.Is(err, store.ErrNotFound):
		return nil, NotFound("Appointment not found")
	case err != nil:
		return nil, Internal("failed to update appointment", err)
	}
	s.log.WithFields(logrus.Fields{
		"appointment_id": id.Hex(),
		"from":           current.Status,
		"to":             next,
		"admin_id":       caller.ID.Hex(),
	}).Info("Appointment status changed")

	s.notifier.AppointmentStatusChanged(updated)
	return updated, nil
}

// Stats counts appointments in total, per status and booked since local midnight.
func (s *AppointmentService) Stats(ctx context.Context) (*models.AppointmentStats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats, err := s.appointments.AppointmentStats(ctx, midnight)
	if err != nil {
		return nil, Internal("failed to count appointments", err)
	}
	return stats, nil
}

func (s *AppointmentService) doctorIndex(ctx context.Context, apts []models.Appointment) (map[primitive.ObjectID]models.Doctor, error) {
	ids := uniqueIDs(apts, func(a models.Appointment) primitive.ObjectID { return a.DoctorID })
	doctors, err := s.doctors.FindDoctorsByIDs(ctx, ids)
	if err != nil {
		return nil, Internal("failed to load doctors", err)
	}
	index := make(map[primitive.ObjectID]models.Doctor, len(doctors))
	for _, d := range doctors {
		index[d.ID] = d
	}
	return index, nil
}

func (s *AppointmentService) userIndex(ctx context.Context, apts []models.Appointment) (map[primitive.ObjectID]models.User, error) {
	ids := uniqueIDs(apts, func(a models.Appointment) primitive.ObjectID { return a.UserID })
	users, err := s.users.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, Internal("failed to load users", err)
	}
	index := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	return index, nil
}

func uniqueIDs(apts []models.Appointment, key func(models.Appointment) primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(apts))
	ids := make([]primitive.ObjectID, 0, len(apts))
	for _, a := range apts {
		id := key(a)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
