package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })
	r.GET("/metrics", MetricsHandler)
	return r
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := newTestEngine(RequestLogger())

	w := get(r, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = get(r, "/ping", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "buckets are per client")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("1.1.1.1")
	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("2.2.2.2")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "1.1.1.1")
	assert.Contains(t, l.clients, "2.2.2.2")
}

func TestRateLimiter_Handler(t *testing.T) {
	r := newTestEngine(NewRateLimiter(0.001, 1).Handler())

	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	w := get(r, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := newTestEngine(NewRateLimiter(0, 1).Handler())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	}
}

func TestMetrics_ExposesRequestCounters(t *testing.T) {
	r := newTestEngine(Metrics())

	get(r, "/ping", nil)
	w := get(r, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{route="/ping",method="GET",status="200"}`)
}
