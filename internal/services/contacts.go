package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/store"
)

type ContactService struct {
	contacts store.ContactStore
	log      logrus.FieldLogger
}

func NewContactService(contacts store.ContactStore, log logrus.FieldLogger) *ContactService {
	return &ContactService{contacts: contacts, log: log}
}

type ContactInput struct {
	FullName string
	Email    string
	Phone    string
	Subject  string
	Message  string
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.Contact, error) {
	c := models.Contact{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Subject:  strings.TrimSpace(in.Subject),
		Message:  strings.TrimSpace(in.Message),
	}
	if c.FullName == "" || c.Email == "" || c.Phone == "" || c.Subject == "" || c.Message == "" {
		return nil, BadRequest("All fields are required")
	}
	if err := s.contacts.CreateContact(ctx, &c); err != nil {
		return nil, Internal("failed to save contact message", err)
	}
	s.log.WithField("contact_id", c.ID.Hex()).Info("Contact message received")
	return &c, nil
}

func (s *ContactService) List(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.contacts.ListContacts(ctx)
	if err != nil {
		return nil, Internal("failed to fetch messages", err)
	}
	return contacts, nil
}

func (s *ContactService) Count(ctx context.Context) (int64, error) {
	n, err := s.contacts.CountContacts(ctx)
	if err != nil {
		return 0, Internal("failed to get stats", err)
	}
	return n, nil
}
