package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/services"
)

// imageField is the multipart field carrying a doctor portrait.
const imageField = "img"

// DoctorRequest is the JSON body for doctor writes. Multipart requests use
// the same names as form fields.
type DoctorRequest struct {
	Name       *string  `json:"name"`
	Specialty  *string  `json:"specialty"`
	Experience *string  `json:"experience"`
	Rating     *float64 `json:"rating"`
	Patients   *string  `json:"patients"`
	About      *string  `json:"about"`
	ImageURL   *string  `json:"imageUrl"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readDoctorRequest accepts either a JSON body or a multipart form with an
// optional portrait file.
func readDoctorRequest(c *gin.Context) (DoctorRequest, *services.Image, func(), error) {
	noop := func() {}
	var req DoctorRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, noop, bindError(err)
		}
		return req, nil, noop, nil
	}

	form := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	req.Name = form("name")
	req.Specialty = form("specialty")
	req.Experience = form("experience")
	req.Patients = form("patients")
	req.About = form("about")
	req.ImageURL = form("imageUrl")
	if raw := form("rating"); raw != nil && strings.TrimSpace(*raw) != "" {
		r, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			return req, nil, noop, services.BadRequest("rating must be a number")
		}
		req.Rating = &r
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		return req, nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return req, nil, noop, services.BadRequest("Doctor image is required and must be valid")
	}
	return req, &services.Image{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.Doctors.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(doctors), "data": doctors})
}

func (h *Handler) GetDoctor(c *gin.Context) {
	doctor, err := h.Doctors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": doctor})
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	req, img, closeImg, err := readDoctorRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer closeImg()

	doctor, err := h.Doctors.Create(c.Request.Context(), services.DoctorInput{
		Name:       deref(req.Name),
		Specialty:  deref(req.Specialty),
		Experience: deref(req.Experience),
		Rating:     req.Rating,
		Patients:   deref(req.Patients),
		About:      deref(req.About),
		ImageURL:   deref(req.ImageURL),
		Image:      img,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": doctor})
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	req, img, closeImg, err := readDoctorRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer closeImg()

	update := models.DoctorUpdate{
		Name:       req.Name,
		Specialty:  req.Specialty,
		Experience: req.Experience,
		Rating:     req.Rating,
		Patients:   req.Patients,
		About:      req.About,
		ImageURL:   req.ImageURL,
	}
	doctor, err := h.Doctors.Update(c.Request.Context(), c.Param("id"), update, img)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": doctor})
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	if err := h.Doctors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Doctor deleted"})
}

func (h *Handler) DoctorStats(c *gin.Context) {
	stats, err := h.Doctors.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
		"message": "Doctor stats fetched successfully",
	})
}
