package scene

import "testing"

func TestSubscribeFiltersByKind(t *testing.T) {
	s := New()

	var moved, added int
	s.Bus().Subscribe(func(ev Event) { added++ }, EventAdded)
	s.Bus().Subscribe(func(ev Event) { moved++ }, EventMoved)

	s.Add(shapeAt("a", 0, 0, 10, 10))
	s.Move("a", 5, 5)
	s.Move("a", 5, 5)

	if added != 1 {
		t.Errorf("added handler calls = %d, want 1", added)
	}
	if moved != 2 {
		t.Errorf("moved handler calls = %d, want 2", moved)
	}
}

func TestSubscribeAllKinds(t *testing.T) {
	s := New()
	var events []EventKind
	s.Bus().Subscribe(func(ev Event) { events = append(events, ev.Kind) })

	s.Add(shapeAt("a", 0, 0, 10, 10))
	s.SetRotation("a", 45)
	s.Clear()

	want := []EventKind{EventAdded, EventRotated, EventCleared}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %v, want %v", i, events[i], want[i])
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := New()
	calls := 0
	sub := s.Bus().Subscribe(func(ev Event) { calls++ }, EventAdded)

	s.Add(shapeAt("a", 0, 0, 10, 10))
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent
	s.Add(shapeAt("b", 0, 0, 10, 10))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMoveDeltaPayload(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 10, 10, 10, 10))

	var got Event
	s.Bus().Subscribe(func(ev Event) { got = ev }, EventMoved)
	s.Move("a", 7, -3)

	if got.Object == nil || got.Object.ID != "a" {
		t.Fatalf("event object = %v, want a", got.Object)
	}
	if got.Delta.X != 7 || got.Delta.Y != -3 {
		t.Errorf("delta = %v, want (7, -3)", got.Delta)
	}
}

func TestHandlerMayUnsubscribeDuringDelivery(t *testing.T) {
	s := New()
	calls := 0
	var sub *Subscription
	sub = s.Bus().Subscribe(func(ev Event) {
		calls++
		sub.Unsubscribe()
	}, EventAdded)

	s.Add(shapeAt("a", 0, 0, 10, 10))
	s.Add(shapeAt("b", 0, 0, 10, 10))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
