package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctorcare-api/internal/middleware"
	"github.com/harentsoaR/doctorcare-api/internal/services"
)

type BookAppointmentRequest struct {
	DoctorID    string `json:"doctorId" binding:"required"`
	PatientName string `json:"patientName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Message     string `json:"message"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	p, _ := middleware.PrincipalFrom(c)
	apt, err := h.Appointments.Book(c.Request.Context(), p, services.BookingRequest{
		DoctorID:    req.DoctorID,
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Email:       req.Email,
		Date:        req.Date,
		Time:        req.Time,
		Message:     req.Message,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Metrics.AppointmentEvent("booked")
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Appointment booked successfully!",
		"data":    apt,
	})
}

func (h *Handler) MyAppointments(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	views, err := h.Appointments.ListMine(c.Request.Context(), p.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(views), "data": views})
}

func (h *Handler) AllAppointments(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	views, err := h.Appointments.ListAll(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(views), "data": views})
}

func (h *Handler) AppointmentStats(c *gin.Context) {
	stats, err := h.Appointments.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"totalAppointments": stats.Total,
		"byStatus":          stats.ByStatus,
		"today":             stats.Today,
	})
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	p, _ := middleware.PrincipalFrom(c)
	apt, err := h.Appointments.Transition(c.Request.Context(), p, c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Metrics.AppointmentEvent(strings.ToLower(string(apt.Status)))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": apt})
}
