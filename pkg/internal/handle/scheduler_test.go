package handle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/router"
	"github.com/yeisme/casefile/pkg/middleware"
	"github.com/yeisme/casefile/pkg/scheduler"
)

func TestSchedulerHandlers(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sched.Stop() })

	if err := sched.AddCron(context.Background(), "documents.expiry_report", "0 7 * * *",
		func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}

	sched.Start()

	e := gin.New()
	e.Use(middleware.AuthMiddleware(configs.AuthConfig{UserHeader: "X-User", RoleHeader: "X-User-Role"}))
	router.RegisterSchedulerRoutes(e.Group("/api/v1"), NewSchedulerHandlers(sched))

	call := func(method, path, role string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("X-User", "ops")
		req.Header.Set("X-User-Role", role)

		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		return w.Code
	}

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"list", http.MethodGet, "/api/v1/scheduler/jobs", "viewer", http.StatusOK},
		{"run as viewer", http.MethodPost, "/api/v1/scheduler/jobs/documents.expiry_report/run", "viewer", http.StatusForbidden},
		{"run as admin", http.MethodPost, "/api/v1/scheduler/jobs/documents.expiry_report/run", "admin", http.StatusAccepted},
		{"run unknown", http.MethodPost, "/api/v1/scheduler/jobs/nope/run", "owner", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(tt.method, tt.path, tt.role); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHealth_NotInitialized(t *testing.T) {
	e := gin.New()
	router.RegisterHealthCheckRoute(e.Group("/api/v1"))

	for _, c := range []string{"db", "s3", "mq"} {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/"+c, nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", c, w.Code)
		}
	}
}
