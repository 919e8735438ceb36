package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/auth/login/", ok)
	r.POST("/auth/login/", ok)
	return r
}

func do(r http.Handler, method, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimitMiddleware(DefaultRateLimitConfig(1, 2)))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login/", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login/", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/auth/login/", "10.0.0.1:1000").Code)

	// other clients and safe methods are unaffected
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login/", "10.0.0.2:1000").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/auth/login/", "10.0.0.1:1000").Code)
}

func TestRateLimitInstancesAreIndependent(t *testing.T) {
	first := newEngine(RateLimitMiddleware(DefaultRateLimitConfig(1, 1)))
	second := newEngine(RateLimitMiddleware(DefaultRateLimitConfig(1, 1)))

	assert.Equal(t, http.StatusOK, do(first, http.MethodPost, "/auth/login/", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, do(second, http.MethodPost, "/auth/login/", "10.0.0.1:1000").Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine(RequestIDMiddleware(), LoggerMiddleware(), SecureHeadersMiddleware())

	w := do(r, http.MethodGet, "/auth/login/", "")
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/auth/login/", nil)
	req.Header.Set(RequestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestDomainValidatorMiddleware(t *testing.T) {
	r := newEngine(DomainValidatorMiddleware("news.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/auth/login/", nil)
	req.Host = "news.example.com:8000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req.Host = "evil.example.com"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
