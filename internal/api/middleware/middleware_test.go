package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})
	return r
}

func do(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAPIKeyAuth(t *testing.T) {
	r := newEngine(APIKeyAuth(AuthConfig{Enabled: true, APIKeys: []string{"sk_test_123456"}}, zap.NewNop()))

	tests := []struct {
		name   string
		header map[string]string
		code   int
	}{
		{"缺少Key", nil, http.StatusUnauthorized},
		{"无效Key", map[string]string{"X-API-Key": "bad"}, http.StatusForbidden},
		{"有效Key", map[string]string{"X-API-Key": "sk_test_123456"}, http.StatusOK},
		{"Bearer", map[string]string{"Authorization": "Bearer sk_test_123456"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, do(r, tt.header).Code)
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	r := newEngine(APIKeyAuth(AuthConfig{Enabled: false}, nil))
	assert.Equal(t, http.StatusOK, do(r, nil).Code)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk_t****3456", maskAPIKey("sk_test_123456"))
}

func TestRequestTracing(t *testing.T) {
	r := newEngine(RequestTracing())

	rr := do(r, map[string]string{RequestIDHeader: "abc"})
	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc", rr.Body.String())

	rr = do(r, nil)
	id := rr.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rr.Body.String())
}

func TestRateLimit(t *testing.T) {
	rejected := 0
	r := newEngine(RateLimit(RateLimitConfig{Enabled: true, RatePerSec: 1, Burst: 2}, func() { rejected++ }))

	assert.Equal(t, http.StatusOK, do(r, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, nil).Code)
	assert.Equal(t, 1, rejected)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := newEngine(RateLimit(RateLimitConfig{Enabled: false, RatePerSec: 1, Burst: 1}, nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, nil).Code)
	}
}

func TestRateLimiter_Stats(t *testing.T) {
	l := NewRateLimiter(0, 0)
	s := l.Stats()
	assert.Equal(t, 100, s.RatePerSecond)
	assert.Equal(t, 200, s.Burst)

	tight := NewRateLimiter(1, 1)
	assert.True(t, tight.Allow())
	assert.False(t, tight.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, tight.Wait(ctx))
	assert.Equal(t, int64(1), tight.Stats().AllowedTotal)
	assert.Equal(t, int64(2), tight.Stats().RejectedTotal)
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.OPTIONS("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
