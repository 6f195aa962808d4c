package event

import (
	"sync"
	"testing"
	"time"
)

func TestBus_SubscribeAndPublishSync(t *testing.T) {
	b := NewBus()
	defer b.Close()

	var got []Event
	b.Subscribe(SessionCreated, func(e Event) {
		got = append(got, e)
	})

	b.PublishSync(Event{Type: SessionCreated, Data: "a"})
	b.PublishSync(Event{Type: TurnRecorded, Data: "ignored"})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Data != "a" {
		t.Errorf("unexpected event data: %v", got[0].Data)
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	b := NewBus()
	defer b.Close()

	var mu sync.Mutex
	count := 0
	b.SubscribeAll(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	b.PublishSync(Event{Type: SessionCreated})
	b.PublishSync(Event{Type: TurnRecorded})
	b.PublishSync(Event{Type: SessionCompleted})

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("expected 3 events, got %d", count)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	count := 0
	unsub := b.Subscribe(TurnRecorded, func(e Event) { count++ })

	b.PublishSync(Event{Type: TurnRecorded})
	unsub()
	b.PublishSync(Event{Type: TurnRecorded})

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
}

func TestBus_PublishAsync(t *testing.T) {
	b := NewBus()
	defer b.Close()

	done := make(chan Event, 1)
	b.Subscribe(SessionCompleted, func(e Event) {
		done <- e
	})

	b.Publish(Event{Type: SessionCompleted, Data: 42})

	select {
	case e := <-done:
		if e.Data != 42 {
			t.Errorf("unexpected data: %v", e.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("async event never delivered")
	}
}

func TestBus_ClosedBusDropsEverything(t *testing.T) {
	b := NewBus()

	count := 0
	b.Subscribe(SessionCreated, func(e Event) { count++ })

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b.PublishSync(Event{Type: SessionCreated})
	if count != 0 {
		t.Errorf("closed bus delivered %d events", count)
	}

	// Subscribing after close returns a no-op unsubscribe.
	unsub := b.Subscribe(SessionCreated, func(e Event) {})
	unsub()
}
