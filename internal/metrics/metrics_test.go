package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/doctors/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/doctors/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/doctors/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.AuthAttempt("admin", true)
	m.AuthAttempt("user", false)
	m.AuthAttempt("user", false)
	m.AppointmentEvent("booked")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("admin", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("user", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.appointmentOps.WithLabelValues("booked")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `doctorcare_auth_attempts_total{kind="admin",status="success"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthAttempt("user", true)
		m.AppointmentEvent("booked")
	})
}
