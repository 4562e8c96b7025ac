// Package memstore is an in-memory store.Store used for local runs and tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/store"
)

// Store keeps every collection in maps guarded by one mutex, so each
// operation is atomic the way a single Mongo write is.
type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[primitive.ObjectID]models.User
	admin        *models.Admin
	doctors      map[primitive.ObjectID]models.Doctor
	appointments map[primitive.ObjectID]models.Appointment
	contacts     map[primitive.ObjectID]models.Contact
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:          time.Now,
		users:        make(map[primitive.ObjectID]models.User),
		doctors:      make(map[primitive.ObjectID]models.Doctor),
		appointments: make(map[primitive.ObjectID]models.Appointment),
		contacts:     make(map[primitive.ObjectID]models.Contact),
	}
}

// WithClock replaces the time source used for createdAt stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// CreateAdmin admits exactly one admin for the lifetime of the store.
func (s *Store) CreateAdmin(_ context.Context, a *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admin != nil {
		return store.ErrAdminExists
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	a.BootstrapKey = models.AdminBootstrapKey
	stored := *a
	s.admin = &stored
	return nil
}

func (s *Store) FindAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == nil || s.admin.Email != email {
		return nil, store.ErrNotFound
	}
	a := *s.admin
	return &a, nil
}

func (s *Store) FindAdminByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == nil || s.admin.ID != id {
		return nil, store.ErrNotFound
	}
	a := *s.admin
	return &a, nil
}

func (s *Store) CreateDoctor(_ context.Context, d *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	s.doctors[d.ID] = *d
	return nil
}

func (s *Store) FindDoctorByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *Store) FindDoctorsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Doctor
	for _, id := range ids {
		if d, ok := s.doctors[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) ListDoctors(_ context.Context) ([]models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s *Store) UpdateDoctor(_ context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Apply(&d)
	s.doctors[id] = d
	return &d, nil
}

func (s *Store) DeleteDoctor(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doctors[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.doctors, id)
	return nil
}

func (s *Store) DoctorStats(_ context.Context, topN int) (*models.DoctorStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, d := range s.doctors {
		counts[d.Specialty]++
	}
	top := make([]models.SpecialtyCount, 0, len(counts))
	for specialty, n := range counts {
		top = append(top, models.SpecialtyCount{Specialty: specialty, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Specialty < top[j].Specialty
	})
	if len(top) > topN {
		top = top[:topN]
	}
	return &models.DoctorStats{Total: int64(len(s.doctors)), TopSpecialties: top}, nil
}

func (s *Store) CreateAppointment(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	a.UpdatedAt = a.CreatedAt
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) FindAppointmentByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) ListAppointmentsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (s *Store) ListAppointments(_ context.Context) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s *Store) UpdateAppointmentStatus(_ context.Context, id primitive.ObjectID, from, to models.AppointmentStatus) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if a.Status != from {
		return nil, store.ErrStatusChanged
	}
	a.Status = to
	a.UpdatedAt = s.now()
	s.appointments[id] = a
	return &a, nil
}

func (s *Store) AppointmentStats(_ context.Context, since time.Time) (*models.AppointmentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.AppointmentStats{}
	for _, a := range s.appointments {
		stats.Total++
		stats.ByStatus.Add(a.Status, 1)
		if !a.CreatedAt.Before(since) {
			stats.Today++
		}
	}
	return stats, nil
}

func (s *Store) CreateContact(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.contacts[c.ID] = *c
	return nil
}

func (s *Store) ListContacts(_ context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (s *Store) CountContacts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.contacts)), nil
}
