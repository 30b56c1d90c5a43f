package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	health "github.com/graphmount/graphmount/internal/health"
)

func TestDefaultResponderIsHealthy(t *testing.T) {
	r := health.NewResponder(nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var status health.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if !status.Healthy || status.Status != "healthy" || status.Message != "ok" {
		t.Errorf("status = %+v, want healthy ok", status)
	}
	if status.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestCustomCheckUnhealthy(t *testing.T) {
	r := health.NewResponder(func(ctx context.Context) health.Status {
		s := health.Unhealthy("cache cold")
		s.Details = map[string]any{"cache": "cold"}
		return s
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var status health.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Healthy || status.Message != "cache cold" {
		t.Errorf("status = %+v, want unhealthy cache cold", status)
	}
	if status.Details["cache"] != "cold" {
		t.Errorf("details = %v, want cache cold", status.Details)
	}
}

func TestDisabledRespondsNotFound(t *testing.T) {
	r := health.Disabled()
	if !r.IsDisabled() {
		t.Fatal("responder should report disabled")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCheckPassesContext(t *testing.T) {
	type key struct{}
	r := health.NewResponder(func(ctx context.Context) health.Status {
		if ctx.Value(key{}) != "v" {
			return health.Unhealthy("lost context")
		}
		return health.Healthy("ok")
	})
	status := r.Check(context.WithValue(context.Background(), key{}, "v"))
	if !status.Healthy {
		t.Errorf("status = %+v, want healthy", status)
	}
}
