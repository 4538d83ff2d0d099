package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/configs"
	cfctx "github.com/yeisme/casefile/pkg/context"
	"github.com/yeisme/casefile/pkg/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestAuthMiddleware(t *testing.T) {
	conf := configs.AuthConfig{
		Enabled:    true,
		UserHeader: "X-User",
		RoleHeader: "X-User-Role",
		SkipPaths:  []string{"/api/v1/health"},
	}

	r := gin.New()
	r.Use(AuthMiddleware(conf))
	r.GET("/api/v1/documents/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		c.String(http.StatusOK, cfctx.GetUserID(ctx)+"/"+cfctx.GetUserRole(ctx))
	})
	r.GET("/api/v1/health/db", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		status  int
		body    string
	}{
		{"user header", "/api/v1/documents/d1", map[string]string{"X-User": "ana", "X-User-Role": "editor"}, http.StatusOK, "ana/editor"},
		{"proxy header", "/api/v1/documents/d1", map[string]string{"X-Auth-Request-Email": "ana@clinic.test"}, http.StatusOK, "ana@clinic.test/"},
		{"anonymous", "/api/v1/documents/d1", nil, http.StatusUnauthorized, ""},
		{"skipped path", "/api/v1/health/db", nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			w := serve(r, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}

			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestAuthMiddleware_DevQuery(t *testing.T) {
	r := gin.New()
	r.Use(AuthMiddleware(configs.AuthConfig{Enabled: true, DevAllowQuery: true}))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, cfctx.GetUserID(c.Request.Context())) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x?user=bruno", nil))
	if w.Code != http.StatusOK || w.Body.String() != "bruno" {
		t.Errorf("status %d body %q", w.Code, w.Body.String())
	}
}

func TestRequireMinRole(t *testing.T) {
	r := gin.New()
	r.Use(AuthMiddleware(configs.AuthConfig{Enabled: true, UserHeader: "X-User", RoleHeader: "X-User-Role"}))
	r.GET("/admin", RequireMinRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	for role, want := range map[string]int{
		"":       http.StatusForbidden,
		"viewer": http.StatusForbidden,
		"ADMIN":  http.StatusOK,
		"owner":  http.StatusOK,
		"root":   http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-User", "ana")
		req.Header.Set("X-User-Role", role)

		if w := serve(r, req); w.Code != want {
			t.Errorf("role %q: status %d, want %d", role, w.Code, want)
		}
	}
}

func TestETagMiddleware(t *testing.T) {
	calls := 0

	r := gin.New()
	r.Use(ETagMiddleware(0))
	r.GET("/doc", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"id": "d1"})
	})
	r.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	first := serve(r, httptest.NewRequest(http.MethodGet, "/doc", nil))
	etag := first.Header().Get("ETag")

	if first.Code != http.StatusOK || etag == "" || first.Body.String() != `{"id":"d1"}` {
		t.Fatalf("first response: %d %q %q", first.Code, etag, first.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/doc", nil)
	req.Header.Set("If-None-Match", etag)

	second := serve(r, req)
	if second.Code != http.StatusNotModified || second.Body.Len() != 0 {
		t.Errorf("conditional response: %d %q", second.Code, second.Body.String())
	}

	if calls != 2 {
		t.Errorf("handler must run on every request, calls = %d", calls)
	}

	miss := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if miss.Code != http.StatusNotFound || miss.Header().Get("ETag") != "" {
		t.Errorf("error response: %d etag %q", miss.Code, miss.Header().Get("ETag"))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1, Key: "header:X-User"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-User", user)

		return serve(r, req).Code
	}

	if code := request("ana"); code != http.StatusOK {
		t.Fatalf("first request: %d", code)
	}

	if code := request("ana"); code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: %d", code)
	}

	if code := request("bruno"); code != http.StatusOK {
		t.Errorf("separate key should have its own bucket: %d", code)
	}
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	cfg := configs.CircuitBreakerConfig{
		Enabled:           true,
		FailureRate:       0.5,
		MinRequests:       2,
		IntervalSeconds:   60,
		TimeoutSeconds:    60,
		MaxRequestsInHalf: 1,
	}

	r := gin.New()
	r.Use(CircuitBreakerMiddleware(cfg))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/api/v1/health/db", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 2 {
		serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	}

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil)); w.Code != http.StatusServiceUnavailable {
		t.Errorf("breaker should be open, got %d", w.Code)
	}

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/health/db", nil)); w.Code != http.StatusOK {
		t.Errorf("health probe should bypass breaker, got %d", w.Code)
	}
}
