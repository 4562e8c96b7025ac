package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/doctorcare-api/internal/models"
)

const textbeltURL = "https://textbelt.com/text"

// Notifier is told about appointment lifecycle events. Implementations must
// not block the request that triggered them.
type Notifier interface {
	AppointmentBooked(apt *models.Appointment)
	AppointmentStatusChanged(apt *models.Appointment)
}

// NotificationService sends appointment SMS through the Textbelt API.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	log      logrus.FieldLogger
}

func NewNotificationService(apiKey string, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (s *NotificationService) AppointmentBooked(apt *models.Appointment) {
	body := fmt.Sprintf(
		"Appointment request received: %s with %s on %s at %s. Status: %s.",
		apt.PatientName,
		apt.DoctorName,
		apt.Date.Format("Jan 2"),
		apt.Time,
		apt.Status,
	)
	s.dispatch(apt.Phone, body)
}

func (s *NotificationService) AppointmentStatusChanged(apt *models.Appointment) {
	body := fmt.Sprintf(
		"Your appointment with %s on %s at %s is now %s.",
		apt.DoctorName,
		apt.Date.Format("Jan 2"),
		apt.Time,
		apt.Status,
	)
	s.dispatch(apt.Phone, body)
}

func (s *NotificationService) dispatch(phone, message string) {
	if s.apiKey == "" {
		s.log.Debug("SMS not sent: TEXTBELT_API_KEY is not set")
		return
	}
	if phone == "" {
		s.log.Info("SMS not sent: appointment has no phone number")
		return
	}
	// Send in a goroutine so it doesn't block the API response
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.send(ctx, phone, message); err != nil {
			s.log.WithError(err).WithField("phone", phone).Warn("Failed to send SMS")
			return
		}
		s.log.WithField("phone", phone).Info("SMS sent")
	}()
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request failed: %w", err)
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response undecodable (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
