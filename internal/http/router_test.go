package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-api/internal/service"
)

func TestRouter_HealthAndNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK || resp["success"] != true {
		t.Fatalf("health: unexpected %d: %v", rec.Code, resp)
	}

	rec, resp = f.do(t, http.MethodGet, "/api/unknown", "", nil)
	if rec.Code != http.StatusNotFound || resp["message"] != "Route /api/unknown not found" {
		t.Fatalf("not found: unexpected %d: %v", rec.Code, resp)
	}
}

func TestRouter_IPRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newAPIFixture(t)
	router := NewRouter(RouterDeps{
		Logger:    zap.NewNop(),
		Auth:      &AuthHandler{logger: zap.NewNop()},
		Notes:     &NoteHandler{logger: zap.NewNop()},
		Tokens:    f.jwt,
		IPLimiter: denyAllLimiter{},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware_ReturnsJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(recoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != `{"message":"Internal server error","success":false}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestNewHandler_CORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newAPIFixture(t)
	handler := NewHandler(RouterDeps{
		Logger:      zap.NewNop(),
		Auth:        &AuthHandler{logger: zap.NewNop()},
		Notes:       &NoteHandler{logger: zap.NewNop()},
		Tokens:      f.jwt,
		FrontendURL: "http://app.example.com",
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/signin", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example.com" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/signin", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allowed origin %q", got)
	}
}

func TestRouter_IPRateLimitWithMemoryLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newAPIFixture(t)
	router := NewRouter(RouterDeps{
		Logger:    zap.NewNop(),
		Auth:      &AuthHandler{logger: zap.NewNop()},
		Notes:     &NoteHandler{logger: zap.NewNop()},
		Tokens:    f.jwt,
		IPLimiter: service.NewMemoryRateLimiter(time.Minute, 2),
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 200, 200, 429; got %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected other client unaffected, got %d", rec.Code)
	}
}
