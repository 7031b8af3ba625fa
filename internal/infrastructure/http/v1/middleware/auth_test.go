package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokopos/internal/core/reqctx"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, username, role string, expires time.Time) string {
	t.Helper()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(), Auth(NewTokenValidator(testSecret)))
	handlers := append(extra, func(c *gin.Context) {
		actor := reqctx.GetActor(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"username": actor.Username, "role": actor.Role})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	r := authRouter()
	token := signToken(t, testSecret, "kasir1", "cashier", time.Now().Add(time.Hour))

	w := doGet(r, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kasir1")
}

func TestAuth_MissingHeader(t *testing.T) {
	w := doGet(authRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	w := doGet(authRouter(), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	r := authRouter()
	token := signToken(t, "other-secret", "kasir1", "cashier", time.Now().Add(time.Hour))

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	r := authRouter()
	token := signToken(t, testSecret, "kasir1", "cashier", time.Now().Add(-time.Hour))

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RejectsNonHMACAlgorithm(t *testing.T) {
	r := authRouter()

	// alg=none tokens must not pass, whatever their payload says.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "root", Role: "admin"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w := doGet(r, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := authRouter(RequireRole("admin"))

	cashier := signToken(t, testSecret, "kasir1", "cashier", time.Now().Add(time.Hour))
	w := doGet(r, "Bearer "+cashier)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := signToken(t, testSecret, "boss", "admin", time.Now().Add(time.Hour))
	w = doGet(r, "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateToken_ActorFields(t *testing.T) {
	v := NewTokenValidator(testSecret)
	token := signToken(t, testSecret, "kasir1", "cashier", time.Now().Add(time.Hour))

	actor, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.UserID)
	assert.Equal(t, "kasir1", actor.Username)
	assert.Equal(t, "cashier", actor.Role)
}
