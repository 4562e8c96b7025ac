package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/store"
	"github.com/harentsoaR/doctorcare-api/internal/utils"
)

const principalKey = "principal"

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// Authenticated verifies the bearer token and stores the caller's principal
// on the context.
func Authenticated(tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		principal, err := tokens.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			abort(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin must run after Authenticated. The admin role claim alone is
// not enough: the id has to resolve to a stored admin.
func RequireAdmin(admins store.AdminStore, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Not authorized")
			return
		}
		if !principal.IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}

		_, err := admins.FindAdminByID(c.Request.Context(), principal.ID)
		if errors.Is(err, store.ErrNotFound) {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		if err != nil {
			log.WithError(err).WithField("admin_id", principal.ID.Hex()).Error("Admin lookup failed")
			abort(c, http.StatusInternalServerError, "Server Error")
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal set by Authenticated.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
