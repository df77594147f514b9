package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  uuid.NewString(),
		"username": "ana",
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Request id ────────────────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, http.MethodGet, "/x", nil)
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	w = serve(r, http.MethodGet, "/x", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

// ── JWT / roles ───────────────────────────────────────────────────────────────

func protected() *gin.Engine {
	r := gin.New()
	g := r.Group("/", JWTAuth(testSecret))
	g.GET("/read", func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).ActorID().String())
	})
	g.POST("/write", RequireRole("admin", "manager"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestJWTAuth(t *testing.T) {
	r := protected()

	w := serve(r, http.MethodGet, "/read", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/read", map[string]string{"Authorization": "Bearer " + signToken(t, "viewer", -time.Minute)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/read", map[string]string{"Authorization": "Bearer " + signToken(t, "viewer", time.Hour)})
	assert.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestRequireRole(t *testing.T) {
	r := protected()

	w := serve(r, http.MethodPost, "/write", map[string]string{"Authorization": "Bearer " + signToken(t, "viewer", time.Hour)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodPost, "/write", map[string]string{"Authorization": "Bearer " + signToken(t, "manager", time.Hour)})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/x", nil).Code)
}

// ── CORS ──────────────────────────────────────────────────────────────────────

func TestCORS_Allowlist(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://app.example.com, https://admin.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodOptions, "/x", map[string]string{
		"Origin":                        "https://admin.example.com",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", map[string]string{"Origin": "https://anything.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// ── Recovery / errors ─────────────────────────────────────────────────────────

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
}

func TestErrorHandler_HidesInternalError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := serve(r, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

// ── Rate limiting ─────────────────────────────────────────────────────────────

func limited(rdb *redis.Client, limit int) *gin.Engine {
	r := gin.New()
	r.GET("/x", RateLimiter(rdb, "test", limit, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := limited(rdb, 2)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// A second instance shares the counter through redis.
	assert.Equal(t, http.StatusTooManyRequests, serve(limited(rdb, 2), http.MethodGet, "/x", nil).Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
}

func TestRateLimiter_LocalFallback(t *testing.T) {
	r := limited(nil, 1)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/x", nil).Code)
}

func TestWindowCounter_ResetsAfterWindow(t *testing.T) {
	w := newWindowCounter(time.Second)
	now := time.Now()
	n, _ := w.hit("k", now)
	assert.Equal(t, 1, n)
	n, _ = w.hit("k", now)
	assert.Equal(t, 2, n)
	n, _ = w.hit("k", now.Add(2*time.Second))
	assert.Equal(t, 1, n)
}
