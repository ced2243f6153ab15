package eventbus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(4)
	defer unsub()

	b.Publish(Event{Type: TypeReminderDelivered, Data: DeliveryEvent{Identifier: "p1-completion"}})

	select {
	case e := <-ch:
		if e.Type != TypeReminderDelivered {
			t.Errorf("type = %q", e.Type)
		}
		d, ok := e.Data.(DeliveryEvent)
		if !ok || d.Identifier != "p1-completion" {
			t.Errorf("data = %#v", e.Data)
		}
		if e.Time.IsZero() {
			t.Error("publish should stamp the event time")
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	t.Parallel()
	b := New()
	_, unsub := b.Subscribe(1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		// Far more events than the buffer holds; extras must be dropped,
		// not block the publisher.
		for i := 0; i < 100; i++ {
			b.Publish(Event{Type: TypeReminderScheduled})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestPublishAfterUnsubscribe(t *testing.T) {
	t.Parallel()
	b := New()
	_, unsub := b.Subscribe(1)
	unsub()
	unsub() // idempotent

	// Must not panic on the closed channel.
	b.Publish(Event{Type: TypeReminderCancelled})
}
