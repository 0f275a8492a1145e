package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	cfgpkg "github.com/taoyao-code/meter-codec/internal/config"
	appmetrics "github.com/taoyao-code/meter-codec/internal/metrics"
)

func newTestServer(ready bool, swagger bool) *Server {
	gin.SetMode(gin.TestMode)
	cfg := cfgpkg.HTTPConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second, Swagger: swagger}
	reg := appmetrics.NewRegistry()
	return New(cfg, "/metrics", appmetrics.Handler(reg), func() bool { return ready })
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestHealthzReadyzMetrics(t *testing.T) {
	srv := newTestServer(true, false)

	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/readyz").Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/swagger/index.html").Code)
}

func TestReadyzNotReady(t *testing.T) {
	srv := newTestServer(false, false)
	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, http.MethodGet, "/readyz").Code)
}

func TestRegisterRoutes(t *testing.T) {
	srv := newTestServer(true, false)
	srv.Register(func(r *gin.Engine) {
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	})
	srv.Register(nil)

	rr := serve(srv, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

func TestSwaggerRouteMounted(t *testing.T) {
	srv := newTestServer(true, true)
	rr := serve(srv, http.MethodGet, "/swagger/index.html")
	assert.Equal(t, http.StatusOK, rr.Code)
}
