package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctorcare-api/internal/media"
	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/store"
)

const topSpecialties = 5

type DoctorService struct {
	doctors store.DoctorStore
	media   media.Store
	log     logrus.FieldLogger
}

func NewDoctorService(doctors store.DoctorStore, images media.Store, log logrus.FieldLogger) *DoctorService {
	return &DoctorService{doctors: doctors, media: images, log: log}
}

// Image is an uploaded portrait.
type Image struct {
	Filename string
	Body     io.Reader
}

type DoctorInput struct {
	Name       string
	Specialty  string
	Experience string
	Rating     *float64
	Patients   string
	About      string
	// ImageURL is used when no Image is uploaded.
	ImageURL string
	Image    *Image
}

func (s *DoctorService) List(ctx context.Context) ([]models.Doctor, error) {
	doctors, err := s.doctors.ListDoctors(ctx)
	if err != nil {
		return nil, Internal("failed to list doctors", err)
	}
	return doctors, nil
}

func (s *DoctorService) Get(ctx context.Context, rawID string) (*models.Doctor, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
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

func (s *DoctorService) Create(ctx context.Context, in DoctorInput) (*models.Doctor, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.Experience = strings.TrimSpace(in.Experience)
	if in.Name == "" || in.Specialty == "" || in.Experience == "" {
		return nil, BadRequest("name, specialty and experience are required")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return nil, BadRequest("rating must be between 0 and 5")
	}

	imageURL, err := s.imageFor(ctx, in)
	if err != nil {
		return nil, err
	}
	if imageURL == "" {
		return nil, BadRequest("Doctor image is required and must be valid")
	}

	doctor := &models.Doctor{
		Name:       in.Name,
		Specialty:  in.Specialty,
		Experience: in.Experience,
		Rating:     models.DefaultDoctorRating,
		Patients:   models.DefaultPatientsLabel,
		About:      strings.TrimSpace(in.About),
		ImageURL:   imageURL,
	}
	if in.Rating != nil {
		doctor.Rating = *in.Rating
	}
	if p := strings.TrimSpace(in.Patients); p != "" {
		doctor.Patients = p
	}

	if err := s.doctors.CreateDoctor(ctx, doctor); err != nil {
		return nil, Internal("failed to create doctor", err)
	}
	s.log.WithField("doctor_id", doctor.ID.Hex()).Info("Doctor created")
	return doctor, nil
}

// Update changes the supplied fields. A new image replaces and deletes the old one.
func (s *DoctorService) Update(ctx context.Context, rawID string, u models.DoctorUpdate, img *Image) (*models.Doctor, error) {
	existing, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if u.Rating != nil && (*u.Rating < 0 || *u.Rating > 5) {
		return nil, BadRequest("rating must be between 0 and 5")
	}

	if img != nil {
		url, err := s.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		u.ImageURL = &url
	}

	updated, err := s.doctors.UpdateDoctor(ctx, existing.ID, u)
	if err != nil && img != nil {
		s.deleteImage(ctx, *u.ImageURL)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("Doctor not found")
	}
	if err != nil {
		return nil, Internal("failed to update doctor", err)
	}
	if u.ImageURL != nil && *u.ImageURL != existing.ImageURL {
		s.deleteImage(ctx, existing.ImageURL)
	}
	return updated, nil
}

// Delete removes the doctor and its image. Existing appointments keep their
// doctor name snapshot.
func (s *DoctorService) Delete(ctx context.Context, rawID string) error {
	existing, err := s.Get(ctx, rawID)
	if err != nil {
		return err
	}
	if err := s.doctors.DeleteDoctor(ctx, existing.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("Doctor not found")
		}
		return Internal("failed to delete doctor", err)
	}
	s.deleteImage(ctx, existing.ImageURL)
	s.log.WithField("doctor_id", existing.ID.Hex()).Info("Doctor deleted")
	return nil
}

func (s *DoctorService) Stats(ctx context.Context) (*models.DoctorStats, error) {
	stats, err := s.doctors.DoctorStats(ctx, topSpecialties)
	if err != nil {
		return nil, Internal("failed to fetch doctor stats", err)
	}
	return stats, nil
}

func (s *DoctorService) imageFor(ctx context.Context, in DoctorInput) (string, error) {
	if in.Image != nil {
		return s.upload(ctx, in.Image)
	}
	return strings.TrimSpace(in.ImageURL), nil
}

func (s *DoctorService) upload(ctx context.Context, img *Image) (string, error) {
	url, err := s.media.Upload(ctx, img.Filename, img.Body)
	if errors.Is(err, media.ErrMediaDisabled) {
		return "", BadRequest("Image uploads are not configured, provide imageUrl instead")
	}
	if err != nil {
		return "", Internal("failed to upload image", err)
	}
	return url, nil
}

// deleteImage is best effort: a stale image on the host is not worth failing the request.
func (s *DoctorService) deleteImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.Delete(ctx, url); err != nil && !errors.Is(err, media.ErrMediaDisabled) {
		s.log.WithError(err).WithField("url", url).Warn("Failed to delete doctor image")
	}
}
