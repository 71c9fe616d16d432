package eventbus

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishBroadcast(t *testing.T) {
	bus := NewStaticEventBus()
	calledA := false
	calledB := false

	bus.Subscribe(StaticEventSaved, func(ctx context.Context, event StaticEvent) error {
		calledA = true
		return nil
	})
	bus.Subscribe(StaticEventSaved, func(ctx context.Context, event StaticEvent) error {
		calledB = event.Name == "css/site.css"
		return nil
	})

	if err := bus.Publish(context.Background(), StaticEventSaved, StaticEvent{Type: StaticEventSaved, Name: "css/site.css"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !calledA || !calledB {
		t.Fatalf("expected handlers to be called")
	}
}

func TestBusOnlyMatchingType(t *testing.T) {
	bus := NewStaticEventBus()
	called := false
	bus.Subscribe(StaticEventDeleted, func(ctx context.Context, event StaticEvent) error {
		called = true
		return nil
	})

	if err := bus.Publish(context.Background(), StaticEventSaved, StaticEvent{Type: StaticEventSaved}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("expected deleted handler not to be called for saved event")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewStaticEventBus()
	called := false
	unsubscribe := bus.Subscribe(StaticEventSaved, func(ctx context.Context, event StaticEvent) error {
		called = true
		return nil
	})
	unsubscribe()

	if err := bus.Publish(context.Background(), StaticEventSaved, StaticEvent{Type: StaticEventSaved}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("expected handler to be unsubscribed")
	}
}

func TestBusPublishJoinErrors(t *testing.T) {
	bus := NewStaticEventBus()
	bus.Subscribe(StaticEventSaved, func(ctx context.Context, event StaticEvent) error {
		return errors.New("err-a")
	})
	bus.Subscribe(StaticEventSaved, func(ctx context.Context, event StaticEvent) error {
		return errors.New("err-b")
	})

	if err := bus.Publish(context.Background(), StaticEventSaved, StaticEvent{Type: StaticEventSaved}); err == nil {
		t.Fatalf("expected error")
	}
}
