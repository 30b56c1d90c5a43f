package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	engine "github.com/graphmount/graphmount/internal/engine"
	lifecycle "github.com/graphmount/graphmount/internal/lifecycle"
)

// stubAdapter records attach and drain calls without mounting anything.
type stubAdapter struct {
	name      string
	attachErr error
	attached  int
	drained   int
	drainErr  error
	onDrain   func()
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Attach(opts adapter.Options) error {
	s.attached++
	return s.attachErr
}

func (s *stubAdapter) Drain(ctx context.Context) error {
	s.drained++
	if s.onDrain != nil {
		s.onDrain()
	}
	return s.drainErr
}

func (s *stubAdapter) NormalizeRequest(raw adapter.RawRequest) (engine.Request, []engine.Request, *engine.Error) {
	return engine.Request{}, nil, nil
}

func (s *stubAdapter) SerializeResponse(result *engine.Result) adapter.Response {
	return adapter.Response{}
}

var _ adapter.Adapter = (*stubAdapter)(nil)

func TestStartOnce(t *testing.T) {
	ctrl := lifecycle.New()
	if got := ctrl.State(); got != lifecycle.StateCreated {
		t.Fatalf("state = %q, want created", got)
	}
	if err := ctrl.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := ctrl.State(); got != lifecycle.StateStarted {
		t.Fatalf("state = %q, want started", got)
	}
}

func TestStartTwiceFails(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	err := ctrl.Start()
	if !errors.Is(err, lifecycle.ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}
	var lerr *lifecycle.Error
	if !errors.As(err, &lerr) {
		t.Fatalf("err = %T, want *lifecycle.Error", err)
	}
	if lerr.Op != "start" || lerr.State != lifecycle.StateStarted {
		t.Errorf("error = %+v, want op start in state started", lerr)
	}
}

func TestAttachBeforeStartFails(t *testing.T) {
	ctrl := lifecycle.New()
	a := &stubAdapter{name: "stub"}
	err := ctrl.Attach(a)
	if !errors.Is(err, lifecycle.ErrNotStarted) {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}
	if a.attached != 0 {
		t.Errorf("adapter attached %d times despite the ordering violation", a.attached)
	}
	if got := ctrl.State(); got != lifecycle.StateCreated {
		t.Errorf("state = %q, want created", got)
	}
}

func TestAttachTransitionsToAttached(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	a := &stubAdapter{name: "stub"}
	if err := ctrl.Attach(a); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if a.attached != 1 {
		t.Errorf("adapter attached %d times, want 1", a.attached)
	}
	if got := ctrl.State(); got != lifecycle.StateAttached {
		t.Errorf("state = %q, want attached", got)
	}

	// A second adapter keeps the controller in Attached.
	if err := ctrl.Attach(&stubAdapter{name: "other"}); err != nil {
		t.Fatalf("second attach: %v", err)
	}
	if got := ctrl.State(); got != lifecycle.StateAttached {
		t.Errorf("state = %q, want attached", got)
	}
}

func TestAttachErrorDoesNotRegisterHook(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	a := &stubAdapter{name: "broken", attachErr: errors.New("port taken")}
	if err := ctrl.Attach(a); err == nil {
		t.Fatal("expected attach to fail")
	}
	if err := ctrl.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if a.drained != 0 {
		t.Errorf("broken adapter drained %d times, want 0", a.drained)
	}
}

func TestAttachAfterDrainFails(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Drain(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := ctrl.Attach(&stubAdapter{name: "late"})
	if !errors.Is(err, lifecycle.ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}

func TestDrainRunsHooksInOrder(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}

	var order []string
	a := &stubAdapter{name: "first", onDrain: func() { order = append(order, "first") }}
	b := &stubAdapter{name: "second", onDrain: func() { order = append(order, "second") }}
	if err := ctrl.Attach(a); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Attach(b); err != nil {
		t.Fatal(err)
	}
	ctrl.OnDrain("extra", func(ctx context.Context) error {
		order = append(order, "extra")
		return nil
	})

	if err := ctrl.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	want := []string{"first", "second", "extra"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if a.drained != 1 || b.drained != 1 {
		t.Errorf("drain counts = %d/%d, want 1/1", a.drained, b.drained)
	}
	if got := ctrl.State(); got != lifecycle.StateStopped {
		t.Errorf("state = %q, want stopped", got)
	}
}

func TestDrainCollectsHookErrors(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}

	errA := errors.New("listener stuck")
	errB := errors.New("flush failed")
	a := &stubAdapter{name: "a", drainErr: errA}
	b := &stubAdapter{name: "b", drainErr: errB}
	if err := ctrl.Attach(a); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Attach(b); err != nil {
		t.Fatal(err)
	}

	err := ctrl.Drain(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("err = %v, want both hook errors", err)
	}
	// A failing hook must not short-circuit the ones after it.
	if b.drained != 1 {
		t.Errorf("second hook ran %d times, want 1", b.drained)
	}
	if got := ctrl.State(); got != lifecycle.StateStopped {
		t.Errorf("state = %q, want stopped", got)
	}
}

func TestDrainTwiceFails(t *testing.T) {
	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Drain(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := ctrl.Drain(context.Background())
	if !errors.Is(err, lifecycle.ErrStopped) {
		t.Fatalf("err = %v, want ErrStopped", err)
	}
}

func TestDrainBeforeStartFails(t *testing.T) {
	ctrl := lifecycle.New()
	err := ctrl.Drain(context.Background())
	if !errors.Is(err, lifecycle.ErrNotStarted) {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}
}
