package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadrouter/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncRunsAllHandlersAndJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var calls int
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		calls++
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		calls++
		return errors.New("handler boom")
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "test.event"})
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
	if err == nil {
		t.Fatalf("expected joined handler error")
	}
}

func TestPublishIsAsynchronousAndIsolated(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		defer wg.Done()
		select {
		case <-ctx.Done():
			t.Errorf("expected handler context to outlive the publisher's")
		default:
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{NewBaseEvent(), "test.event"})
	cancel()
	wg.Wait()
}

func TestSubscribeOnlyReceivesMatchingEvents(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	received := make(chan string, 1)
	bus.Subscribe("wanted.event", HandlerFunc(func(ctx context.Context, e Event) error {
		received <- e.EventName()
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "other.event"})
	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "wanted.event"})

	select {
	case name := <-received:
		if name != "wanted.event" {
			t.Fatalf("handler received %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("handler never received the matching event")
	}
}
