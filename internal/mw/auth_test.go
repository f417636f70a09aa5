package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-portal-backend/internal/model"
)

var testSecret = []byte("mw-test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func validClaims(role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"user_id": 42,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
}

func newAuthRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := CallerID(c)
		role, _ := CallerRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/probe", handlers...)
	return r
}

func probe(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newAuthRouter()

	t.Run("valid token passes identity through", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims("student"))
		w := probe(r, "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":42`)
		assert.Contains(t, w.Body.String(), `"role":"student"`)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, probe(r, "").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, probe(r, "Token abc").Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token := signToken(t, []byte("someone-else"), validClaims("student"))
		assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims("student")
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		token := signToken(t, testSecret, claims)
		assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+token).Code)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims("superuser"))
		assert.Equal(t, http.StatusUnauthorized, probe(r, "Bearer "+token).Code)
	})
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter(RequireRole(model.RoleAdmin, model.RoleLecturer))

	t.Run("allowed role", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims("admin"))
		assert.Equal(t, http.StatusOK, probe(r, "Bearer "+token).Code)
	})

	t.Run("disallowed role", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims("student"))
		assert.Equal(t, http.StatusForbidden, probe(r, "Bearer "+token).Code)
	})
}
