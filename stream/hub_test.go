package stream

import (
	"testing"
	"time"

	"homehub/models"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(4)
	b := hub.Subscribe(4)
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	hub.Publish(models.Event{Type: models.EventDeviceStatusChanged})

	for _, ch := range []chan models.Event{a, b} {
		select {
		case ev := <-ch:
			if ev.Type != models.EventDeviceStatusChanged {
				t.Fatalf("unexpected event type %s", ev.Type)
			}
			if ev.At.IsZero() {
				t.Fatal("expected publish to stamp the event time")
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe(1)
	defer hub.Unsubscribe(slow)

	// Fill the buffer, then publish more; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(models.Event{Type: models.EventSensorTelemetry})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	if len(slow) != 1 {
		t.Fatalf("expected exactly the buffered event to survive, got %d", len(slow))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe(1)
	hub.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.SubscriberCount())
	}
	// A second unsubscribe is a no-op.
	hub.Unsubscribe(ch)
}
