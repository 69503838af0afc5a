package scene

import "github.com/easelkit/easel/pkg/geo"

// =============================================================================
// Typed event bus
// =============================================================================

// EventKind enumerates the scene notifications.
type EventKind int

const (
	// EventAdded fires after an object is inserted into the scene.
	EventAdded EventKind = iota

	// EventRemoved fires after an object is removed (including cascade
	// removals of connectors, handles, and bound labels).
	EventRemoved

	// EventMoved fires after an object's position changes. Delta carries
	// the translation.
	EventMoved

	// EventScaled fires after an object's scale factors change.
	EventScaled

	// EventRotated fires after an object's rotation changes.
	EventRotated

	// EventModified fires after any other mutation of an object (style,
	// text, geometry edits through Modify).
	EventModified

	// EventCleared fires after the scene is emptied.
	EventCleared

	// EventLoaded fires after the scene is replaced wholesale from a
	// deserialized document.
	EventLoaded
)

// eventKindCount is the number of event kinds; subscriptions index by kind.
const eventKindCount = int(EventLoaded) + 1

// Event is the payload delivered to subscribers.
type Event struct {
	Kind   EventKind
	Object *Object   // nil for EventCleared and EventLoaded
	Delta  geo.Point // set for EventMoved
}

// Handler receives scene events.
type Handler func(Event)

// Subscription is the owning handle returned by Subscribe. Dropping the
// handle without calling Unsubscribe leaks the handler for the lifetime of
// the bus, so callers keep it and unsubscribe when done.
type Subscription struct {
	bus   *Bus
	kinds []EventKind
	id    int
}

// Unsubscribe removes the handler. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	for _, k := range s.kinds {
		delete(s.bus.handlers[k], s.id)
	}
	s.bus = nil
}

// Bus dispatches typed scene events to subscribers. It is single-owner like
// the scene itself: subscribe and emit from the editor's thread of control.
type Bus struct {
	handlers [eventKindCount]map[int]Handler
	nextID   int
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	b := &Bus{}
	for i := range b.handlers {
		b.handlers[i] = make(map[int]Handler)
	}
	return b
}

// Subscribe registers fn for the given event kinds (all kinds if none are
// given) and returns the owning unsubscribe handle.
func (b *Bus) Subscribe(fn Handler, kinds ...EventKind) *Subscription {
	if len(kinds) == 0 {
		kinds = allEventKinds()
	}
	id := b.nextID
	b.nextID++
	for _, k := range kinds {
		b.handlers[k][id] = fn
	}
	return &Subscription{bus: b, kinds: kinds, id: id}
}

// Emit delivers ev to every handler subscribed to its kind. Handlers are
// invoked synchronously; a handler may unsubscribe itself or others during
// delivery.
func (b *Bus) Emit(ev Event) {
	// Snapshot so handlers can mutate subscriptions mid-delivery.
	hs := make([]Handler, 0, len(b.handlers[ev.Kind]))
	for _, h := range b.handlers[ev.Kind] {
		hs = append(hs, h)
	}
	for _, h := range hs {
		h(ev)
	}
}

func allEventKinds() []EventKind {
	kinds := make([]EventKind, eventKindCount)
	for i := range kinds {
		kinds[i] = EventKind(i)
	}
	return kinds
}
