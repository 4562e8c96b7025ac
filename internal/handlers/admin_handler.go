package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminLogin signs the administrator in, creating the account on the very
// first call. A bootstrap answers 201.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	res, err := h.Auth.AdminLogin(c.Request.Context(), req.Email, req.Password)
	h.Metrics.AuthAttempt("admin", err == nil)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status, message := http.StatusOK, "Admin login successful"
	if res.FirstTime {
		status, message = http.StatusCreated, "Admin account created and logged in"
	}
	c.JSON(status, gin.H{
		"success":   true,
		"message":   message,
		"token":     res.Token,
		"firstTime": res.FirstTime,
	})
}
