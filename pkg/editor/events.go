package editor

import "github.com/easelkit/easel/pkg/store"

// EventKind enumerates editor-level notifications. These are coarser than
// scene events: hosts use them to refresh chrome (status bars, document
// lists), not to track individual objects.
type EventKind int

const (
	EventMetricsUpdated EventKind = iota
	EventSyncStatusChanged
	EventDocumentCreated
	EventDocumentSaved
	EventDocumentLoaded
	eventKindCount
)

// Event is an editor notification. Metrics is set for EventMetricsUpdated,
// SyncStatus for EventSyncStatusChanged, DocumentID for the document events.
type Event struct {
	Kind       EventKind
	Metrics    Metrics
	SyncStatus store.SyncStatus
	DocumentID string
}

// Handler receives editor events.
type Handler func(Event)

// Subscription is an active registration on the editor bus. Unsubscribe is
// idempotent.
type Subscription struct {
	bus   *bus
	kinds []EventKind
	id    int
}

// Unsubscribe removes the handler.
func (s *Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	for _, k := range s.kinds {
		delete(s.bus.handlers[k], s.id)
	}
	s.bus = nil
}

type bus struct {
	handlers [eventKindCount]map[int]Handler
	nextID   int
}

func newBus() *bus {
	b := &bus{}
	for i := range b.handlers {
		b.handlers[i] = map[int]Handler{}
	}
	return b
}

func (b *bus) subscribe(fn Handler, kinds ...EventKind) *Subscription {
	if len(kinds) == 0 {
		kinds = make([]EventKind, 0, eventKindCount)
		for k := EventKind(0); k < eventKindCount; k++ {
			kinds = append(kinds, k)
		}
	}
	id := b.nextID
	b.nextID++
	for _, k := range kinds {
		b.handlers[k][id] = fn
	}
	return &Subscription{bus: b, kinds: kinds, id: id}
}

func (b *bus) emit(ev Event) {
	// Snapshot so a handler unsubscribing mid-delivery stays safe.
	hs := make([]Handler, 0, len(b.handlers[ev.Kind]))
	for _, fn := range b.handlers[ev.Kind] {
		hs = append(hs, fn)
	}
	for _, fn := range hs {
		fn(ev)
	}
}
