package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = serve(r, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestIPLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPLimiter(rate.Limit(1), 2)
	l.now = func() time.Time { return now }

	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":4000"
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)
	limited := get("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get("10.0.0.2").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, get("10.0.0.1").Code)
}

func TestIPLimiter_EvictsIdleVisitors(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	ok, _ := l.reserve("a")
	require.True(t, ok)
	now = now.Add(11 * time.Minute)
	ok, _ = l.reserve("b")
	require.True(t, ok)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "b")
}

type stubValidator struct {
	id  domain.Identity
	err error
}

func (s stubValidator) ValidateAccessToken(token string) (domain.Identity, error) {
	if token != "good" {
		return domain.Identity{}, errors.New("bad token")
	}
	return s.id, s.err
}

func TestAuthenticate(t *testing.T) {
	staff := domain.Identity{EmployeeID: uuid.New(), EmployeeCode: "EMP1", Name: "Sam"}
	r := gin.New()
	r.Use(RequestID(), Authenticate(stubValidator{id: staff}))
	r.GET("/me", func(c *gin.Context) {
		id, ok := GetIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"code": id.EmployeeCode, "rid": id.RequestID, "ip": id.IPAddress})
	})
	r.GET("/admin", RequireAdmin(stubChecker{admin: true}, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		path   string
		want   int
	}{
		{"missing header", "", "/me", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", "/me", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "/me", http.StatusUnauthorized},
		{"valid token", "Bearer good", "/me", http.StatusOK},
		{"staff on admin route", "Bearer good", "/admin", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.RemoteAddr = "192.0.2.7:5000"
			req.Header.Set(RequestIDHeader, "rid-1")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(r, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"code":"EMP1","rid":"rid-1","ip":"192.0.2.7"}`, rec.Body.String())
			}
		})
	}
}

type stubChecker struct {
	admin bool
	err   error
}

func (s stubChecker) IsAdmin(context.Context, uuid.UUID) (bool, error) {
	return s.admin, s.err
}

func TestRequireAdmin_ChecksCurrentRole(t *testing.T) {
	admin := domain.Identity{EmployeeID: uuid.New(), EmployeeCode: "ADM1", IsAdmin: true}

	tests := []struct {
		name    string
		checker stubChecker
		want    int
	}{
		{"still admin", stubChecker{admin: true}, http.StatusOK},
		{"demoted since token was issued", stubChecker{admin: false}, http.StatusForbidden},
		{"store unavailable", stubChecker{err: errors.New("connection refused")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Authenticate(stubValidator{id: admin}))
			r.GET("/admin", RequireAdmin(tt.checker, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer good")
			assert.Equal(t, tt.want, serve(r, req).Code)
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{
		AllowedOrigins: []string{"http://ward.local"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization"},
		MaxAge:         time.Hour,
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	pre := httptest.NewRequest(http.MethodOptions, "/", nil)
	pre.Header.Set("Origin", "http://ward.local")
	rec := serve(r, pre)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://ward.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))

	other := httptest.NewRequest(http.MethodOptions, "/", nil)
	other.Header.Set("Origin", "http://evil.example")
	assert.Equal(t, http.StatusForbidden, serve(r, other).Code)

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	plain.Header.Set("Origin", "http://evil.example")
	rec = serve(r, plain)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := metrics.NewCollector("wardtrack_mw", prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/patients/:mrn", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	serve(r, httptest.NewRequest(http.MethodGet, "/patients/12345", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/patients/67890", nil))

	body := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Body.String()
	assert.Contains(t, body, `wardtrack_mw_http_requests_total{method="GET",path="/patients/:mrn",status="200"} 2`)
	assert.False(t, strings.Contains(body, "12345"))
}
