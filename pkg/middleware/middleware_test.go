package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/admin-guard/pkg/admin"
	"github.com/kart-io/admin-guard/pkg/security/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	// Inbound ids are propagated, not replaced.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "\"code\"")
}

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newSubjectRouter(secret string) *gin.Engine {
	r := gin.New()
	r.Use(Subject(secret))
	r.GET("/whoami", func(c *gin.Context) {
		// The resolved subject is visible both through the request context
		// and the gin-attached request context.
		if sub := auth.SubjectFromContext(c.Request.Context()); sub != "" {
			if sub != admin.GinRequestContext(c).Subject() {
				c.String(http.StatusInternalServerError, "subject mismatch")
				return
			}
		}
		c.String(http.StatusOK, admin.GinRequestContext(c).Subject())
	})
	return r
}

func TestSubjectFromBearerToken(t *testing.T) {
	const secret = "test-secret"
	r := newSubjectRouter(secret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, "alice"))
	r.ServeHTTP(w, req)
	assert.Equal(t, "alice", w.Body.String())
}

func TestSubjectFallsBackToGuest(t *testing.T) {
	r := newSubjectRouter("test-secret")

	// No token at all.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, admin.UserGuest, w.Body.String())

	// Token signed with the wrong key.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "alice"))
	r.ServeHTTP(w, req)
	assert.Equal(t, admin.UserGuest, w.Body.String())
}
