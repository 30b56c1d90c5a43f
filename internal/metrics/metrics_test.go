package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	eventbus "github.com/graphmount/graphmount/internal/eventbus"
	events "github.com/graphmount/graphmount/internal/events"
)

func TestRegisterCountsRequests(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	Register()

	counter := httpRequests.WithLabelValues("test", "POST", "200")
	before := testutil.ToFloat64(counter)

	ctx := context.Background()
	eventbus.Publish(ctx, events.HTTPStart{Adapter: "test", Method: "POST", Path: "/"})
	eventbus.Publish(ctx, events.HTTPFinish{
		Adapter:  "test",
		Method:   "POST",
		Path:     "/",
		Status:   200,
		Duration: time.Millisecond,
	})

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("requests_total = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("inflight = %v, want 0 after finish", got)
	}
}

func TestRegisterCountsOperationErrors(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	Register()

	counter := gqlErrors.WithLabelValues("query")
	before := testutil.ToFloat64(counter)

	eventbus.Publish(context.Background(), events.GraphQLFinish{
		OperationType: "query",
		Errors:        []error{context.Canceled},
		Duration:      time.Millisecond,
	})

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("operation_errors_total = %v, want %v", got, before+1)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "graphmount_") {
		t.Error("exposition output missing graphmount collectors")
	}
}
