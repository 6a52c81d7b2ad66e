package eventbus

import "testing"

type testEvent struct {
	Step int
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(testEvent{Step: 3})
	v := <-ch
	ev, ok := v.(testEvent)
	if !ok || ev.Step != 3 {
		t.Fatalf("expected testEvent{3} got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTyped[int]()
	ch := bus.Subscribe()
	for i := 0; i < 20; i++ {
		bus.Publish(i)
	}
	// buffer is 8; the publisher must not have blocked
	if got := <-ch; got != 0 {
		t.Fatalf("expected first event 0 got %v", got)
	}
	bus.Unsubscribe(ch)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
