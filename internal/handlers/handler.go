package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/doctorcare-api/internal/metrics"
	"github.com/harentsoaR/doctorcare-api/internal/middleware"
	"github.com/harentsoaR/doctorcare-api/internal/services"
	"github.com/harentsoaR/doctorcare-api/internal/store"
	"github.com/harentsoaR/doctorcare-api/internal/utils"
)

// Handler holds the services the HTTP layer delegates to.
type Handler struct {
	Auth         *services.AuthService
	Appointments *services.AppointmentService
	Doctors      *services.DoctorService
	Contacts     *services.ContactService
	Metrics      *metrics.Metrics
	Log          logrus.FieldLogger
}

func NewHandler(auth *services.AuthService, appointments *services.AppointmentService, doctors *services.DoctorService, contacts *services.ContactService, m *metrics.Metrics, log logrus.FieldLogger) *Handler {
	return &Handler{
		Auth:         auth,
		Appointments: appointments,
		Doctors:      doctors,
		Contacts:     contacts,
		Metrics:      m,
		Log:          log,
	}
}

type RouterConfig struct {
	Tokens         *utils.TokenService
	Admins         store.AdminStore
	AllowedOrigins []string
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(h.Log), h.Metrics.Middleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	authed := middleware.Authenticated(cfg.Tokens)
	admin := middleware.RequireAdmin(cfg.Admins, h.Log)

	api := r.Group("/api")

	api.POST("/admin/login", h.AdminLogin)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.GET("/me", authed, h.Me)
	}

	appointments := api.Group("/appointments", authed)
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("/my", h.MyAppointments)
		appointments.GET("/all", admin, h.AllAppointments)
		appointments.GET("/stats", admin, h.AppointmentStats)
		appointments.PATCH("/:id/status", admin, h.UpdateAppointmentStatus)
	}

	doctors := api.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/stats", h.DoctorStats)
		doctors.GET("/:id", h.GetDoctor)
		doctors.POST("", authed, admin, h.CreateDoctor)
		doctors.PUT("/:id", authed, admin, h.UpdateDoctor)
		doctors.DELETE("/:id", authed, admin, h.DeleteDoctor)
	}

	contact := api.Group("/contact")
	{
		contact.POST("", h.SubmitContact)
		contact.GET("", authed, admin, h.ListContacts)
		contact.GET("/stats", authed, admin, h.ContactStats)
	}

	return r
}
