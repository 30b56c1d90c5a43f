package eventbus_test

import (
	"context"
	"testing"

	eventbus "github.com/graphmount/graphmount/internal/eventbus"
)

type pingEvent struct{ N int }

type otherEvent struct{}

func TestPublishReachesSubscribers(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var got []int
	unsubscribe := eventbus.Subscribe(func(ctx context.Context, e pingEvent) {
		got = append(got, e.N)
	})
	defer unsubscribe()

	eventbus.Publish(context.Background(), pingEvent{N: 1})
	eventbus.Publish(context.Background(), pingEvent{N: 2})
	eventbus.Publish(context.Background(), otherEvent{})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("received %v, want [1 2]", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	count := 0
	unsubscribe := eventbus.Subscribe(func(ctx context.Context, e pingEvent) { count++ })

	eventbus.Publish(context.Background(), pingEvent{})
	unsubscribe()
	eventbus.Publish(context.Background(), pingEvent{})

	if count != 1 {
		t.Fatalf("received %d events, want 1", count)
	}
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	eventbus.Use(nil)
	// Must not panic.
	eventbus.Publish(context.Background(), pingEvent{})
}

func TestMultipleSubscribers(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	a, b := 0, 0
	defer eventbus.Subscribe(func(ctx context.Context, e pingEvent) { a++ })()
	defer eventbus.Subscribe(func(ctx context.Context, e pingEvent) { b++ })()

	eventbus.Publish(context.Background(), pingEvent{})
	if a != 1 || b != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", a, b)
	}
}
