package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctorcare-api/internal/models"
	"github.com/harentsoaR/doctorcare-api/internal/store"
	"github.com/harentsoaR/doctorcare-api/internal/store/memstore"
	"github.com/harentsoaR/doctorcare-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(tokens *utils.TokenService, admins store.AdminStore) *gin.Engine {
	log, _ := test.NewNullLogger()
	r := gin.New()
	r.GET("/me", Authenticated(tokens), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "id": p.ID.Hex()})
	})
	r.GET("/admin", Authenticated(tokens), RequireAdmin(admins, log), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticated(t *testing.T) {
	log, _ := test.NewNullLogger()
	tokens := utils.NewTokenService("secret", time.Hour, log)
	r := newGuardedRouter(tokens, memstore.New())

	userID := primitive.NewObjectID()
	token, _, err := tokens.Issue(models.UserPrincipal(userID))
	require.NoError(t, err)

	w := get(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.Hex())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not authorized, no token"}`, w.Body.String())
}

func TestAuthenticated_ExpiredToken(t *testing.T) {
	log, _ := test.NewNullLogger()
	past := time.Now().Add(-2 * time.Hour)
	issuer := utils.NewTokenService("secret", time.Hour, log).WithClock(func() time.Time { return past })
	token, _, err := issuer.Issue(models.UserPrincipal(primitive.NewObjectID()))
	require.NoError(t, err)

	r := newGuardedRouter(utils.NewTokenService("secret", time.Hour, log), memstore.New())
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token).Code)
}

func TestRequireAdmin(t *testing.T) {
	log, _ := test.NewNullLogger()
	tokens := utils.NewTokenService("secret", time.Hour, log)
	st := memstore.New()
	r := newGuardedRouter(tokens, st)

	admin := &models.Admin{Name: "Admin", Email: "admin@x.com", Password: "hash"}
	require.NoError(t, st.CreateAdmin(context.Background(), admin))

	adminToken, _, err := tokens.Issue(models.AdminPrincipal(admin.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", adminToken).Code)

	userToken, _, err := tokens.Issue(models.UserPrincipal(primitive.NewObjectID()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", userToken).Code)

	// A correctly signed admin claim for an id that is not a stored admin.
	ghostToken, _, err := tokens.Issue(models.AdminPrincipal(primitive.NewObjectID()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", ghostToken).Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/admin", "").Code)
}

func TestRequireAdmin_WithoutPrincipal(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := gin.New()
	r.GET("/", RequireAdmin(memstore.New(), log), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, get(r, "/", "").Code)
}

type brokenAdmins struct{ store.AdminStore }

func (brokenAdmins) FindAdminByID(context.Context, primitive.ObjectID) (*models.Admin, error) {
	return nil, assert.AnError
}

func TestRequireAdmin_StoreFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	tokens := utils.NewTokenService("secret", time.Hour, log)
	r := gin.New()
	r.GET("/", Authenticated(tokens), RequireAdmin(brokenAdmins{}, log), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, _, err := tokens.Issue(models.AdminPrincipal(primitive.NewObjectID()))
	require.NoError(t, err)

	w := get(r, "/", token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Admin lookup failed", hook.LastEntry().Message)
}
