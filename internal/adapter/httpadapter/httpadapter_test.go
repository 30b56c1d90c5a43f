package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	httpadapter "github.com/graphmount/graphmount/internal/adapter/httpadapter"
	engine "github.com/graphmount/graphmount/internal/engine"
	health "github.com/graphmount/graphmount/internal/health"
	language "github.com/graphmount/graphmount/internal/language"
	lifecycle "github.com/graphmount/graphmount/internal/lifecycle"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	schema, err := language.LoadSchema("t.graphql", `type Query { greeting: String! }`)
	if err != nil {
		t.Fatalf("loading schema: %v", err)
	}
	resolvers := engine.NewResolvers().Register("Query", "greeting", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return "hello", nil
	})
	return engine.New(schema, resolvers)
}

func attach(t *testing.T, opts ...adapter.Option) (*httpadapter.Adapter, *lifecycle.Controller) {
	t.Helper()
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	ad := httpadapter.New(newEngine(t), "127.0.0.1:0")
	if err := ctrl.Attach(ad, opts...); err != nil {
		t.Fatalf("attach: %v", err)
	}
	t.Cleanup(func() { _ = ctrl.Drain(context.Background()) })
	return ad, ctrl
}

func TestServeAfterAttach(t *testing.T) {
	ad, _ := attach(t)

	res, err := http.Post("http://"+ad.Addr()+"/", "application/json", strings.NewReader(`{"query":"{ greeting }"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var p struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Data["greeting"] != "hello" {
		t.Errorf("data = %v, want greeting hello", p.Data)
	}
}

func TestAttachBeforeStartFails(t *testing.T) {
	ctrl := lifecycle.New()
	ad := httpadapter.New(newEngine(t), "127.0.0.1:0")
	err := ctrl.Attach(ad)
	if !errors.Is(err, lifecycle.ErrNotStarted) {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}
	var lerr *lifecycle.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("err = %T, want *lifecycle.Error", err)
	}
	if ctrl.State() != lifecycle.StateCreated {
		t.Errorf("state = %q, want created", ctrl.State())
	}
}

func TestAttachBadAddressFails(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	ad := httpadapter.New(newEngine(t), "127.0.0.1:bogus")
	if err := ctrl.Attach(ad); err == nil {
		t.Fatal("expected a listen error from attach")
	}
}

func TestHealthDefault(t *testing.T) {
	ad, _ := attach(t)

	res, err := http.Get("http://" + ad.Addr() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var status health.Status
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if !status.Healthy || status.Status != "healthy" {
		t.Errorf("status = %+v, want healthy", status)
	}
}

func TestHealthCustomCheckUnhealthy(t *testing.T) {
	ad, _ := attach(t, adapter.WithHealthCheck(func(ctx context.Context) health.Status {
		return health.Unhealthy("database unreachable")
	}))

	res, err := http.Get("http://" + ad.Addr() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", res.StatusCode)
	}
}

func TestHealthDisabled(t *testing.T) {
	ad, _ := attach(t, adapter.WithoutHealthCheck())

	res, err := http.Get("http://" + ad.Addr() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
}

func TestHealthCustomPath(t *testing.T) {
	ad, _ := attach(t, adapter.WithHealthPath("/livez"))

	res, err := http.Get("http://" + ad.Addr() + "/livez")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
}

func TestDrainStopsServing(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	ad := httpadapter.New(newEngine(t), "127.0.0.1:0")
	if err := ctrl.Attach(ad); err != nil {
		t.Fatal(err)
	}
	addr := ad.Addr()

	if err := ctrl.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if ctrl.State() != lifecycle.StateStopped {
		t.Errorf("state = %q, want stopped", ctrl.State())
	}
	if _, err := http.Get("http://" + addr + "/healthz"); err == nil {
		t.Error("listener still accepting connections after drain")
	}
}
