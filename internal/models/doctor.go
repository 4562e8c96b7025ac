package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	DefaultDoctorRating  = 4.5
	DefaultPatientsLabel = "500+"
)

type Doctor struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Specialty  string             `bson:"specialty" json:"specialty"`
	Experience string             `bson:"experience" json:"experience"`
	Rating     float64            `bson:"rating" json:"rating"`
	Patients   string             `bson:"patients" json:"patients"`
	About      string             `bson:"about,omitempty" json:"about,omitempty"`
	ImageURL   string             `bson:"img" json:"img"`
}

// DoctorUpdate holds the fields an administrator may change. Nil fields are left untouched.
type DoctorUpdate struct {
	Name       *string
	Specialty  *string
	Experience *string
	Rating     *float64
	Patients   *string
	About      *string
	ImageURL   *string
}

func (u DoctorUpdate) Empty() bool {
	return u.Name == nil && u.Specialty == nil && u.Experience == nil && u.Rating == nil &&
		u.Patients == nil && u.About == nil && u.ImageURL == nil
}

// Apply copies the non-nil fields of u onto d.
func (u DoctorUpdate) Apply(d *Doctor) {
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Specialty != nil {
		d.Specialty = *u.Specialty
	}
	if u.Experience != nil {
		d.Experience = *u.Experience
	}
	if u.Rating != nil {
		d.Rating = *u.Rating
	}
	if u.Patients != nil {
		d.Patients = *u.Patients
	}
	if u.About != nil {
		d.About = *u.About
	}
	if u.ImageURL != nil {
		d.ImageURL = *u.ImageURL
	}
}

// DoctorSummary is the reduced doctor projection joined into appointment listings.
type DoctorSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Specialty string             `json:"specialty"`
	Image     string             `json:"img,omitempty"`
}

type SpecialtyCount struct {
	Specialty string `bson:"_id" json:"specialty"`
	Count     int64  `bson:"count" json:"count"`
}

type DoctorStats struct {
	Total          int64            `json:"total"`
	TopSpecialties []SpecialtyCount `json:"topSpecialties"`
}
