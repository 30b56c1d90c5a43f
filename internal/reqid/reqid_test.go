package reqid_test

import (
	"context"
	"testing"

	reqid "github.com/graphmount/graphmount/internal/reqid"
)

func TestNewContext(t *testing.T) {
	ctx, id := reqid.NewContext(context.Background())
	if id == "" {
		t.Fatal("empty request ID")
	}
	got, ok := reqid.FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("FromContext = %q, %v; want %q, true", got, ok, id)
	}
}

func TestNewContextIDsAreUnique(t *testing.T) {
	_, a := reqid.NewContext(context.Background())
	_, b := reqid.NewContext(context.Background())
	if a == b {
		t.Fatalf("consecutive IDs collided: %q", a)
	}
}

func TestFromContextMissing(t *testing.T) {
	if id, ok := reqid.FromContext(context.Background()); ok || id != "" {
		t.Fatalf("FromContext = %q, %v; want empty, false", id, ok)
	}
}
