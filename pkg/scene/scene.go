// Package scene maintains the mutable scene graph at the heart of the canvas
// engine: an ordered collection of visual objects with stable identities, a
// typed event bus announcing every mutation, and the document serialization
// boundary.
//
// # Ownership
//
// A Scene has exactly one logical owner (the editor session). All mutation
// happens synchronously on the owner's thread of control; the scene performs
// no locking of its own. Public methods are reentrant-safe: event handlers
// may call back into the scene during delivery.
//
// # Relationships
//
// Objects reference each other by ID only. Removing an object cascades to
// everything that references it (connectors touching it, handles decorating
// it, and text labels bound to it) so the invariant "no dangling reference"
// holds after every public method returns.
package scene

import (
	"slices"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/geo"
)

// Scene is the in-memory ordered collection of all visual objects currently
// editable. Insertion order doubles as z-order: later objects render above
// earlier ones.
type Scene struct {
	objects []*Object
	index   map[string]*Object
	bus     *Bus
}

// New creates an empty scene with its own event bus.
func New() *Scene {
	return &Scene{
		index: make(map[string]*Object),
		bus:   NewBus(),
	}
}

// Bus returns the scene's event bus.
func (s *Scene) Bus() *Bus { return s.bus }

// =============================================================================
// Lookup
// =============================================================================

// Get returns the object with the given id.
func (s *Scene) Get(id string) (*Object, bool) {
	o, ok := s.index[id]
	return o, ok
}

// Objects returns the objects in z-order. The slice is a copy; the objects
// are not.
func (s *Scene) Objects() []*Object {
	return slices.Clone(s.objects)
}

// Len returns the number of objects in the scene, decorations included.
func (s *Scene) Len() int { return len(s.objects) }

// Content returns the non-decoration objects in z-order.
func (s *Scene) Content() []*Object {
	out := make([]*Object, 0, len(s.objects))
	for _, o := range s.objects {
		if !o.Decoration() {
			out = append(out, o)
		}
	}
	return out
}

// LastContent returns the most recently added object that participates in
// placement (shape, text, or image), or nil if there is none. The placement
// engine uses it for its workflow-continuation tier.
func (s *Scene) LastContent() *Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Content() {
			return s.objects[i]
		}
	}
	return nil
}

// ContentBounds returns the bounding box of all content objects. Connectors
// and decorations contribute nothing. Returns the zero Rect for an empty
// scene.
func (s *Scene) ContentBounds() geo.Rect {
	var bounds geo.Rect
	for _, o := range s.objects {
		if !o.Content() {
			continue
		}
		bounds = bounds.Union(o.BoundingBox())
	}
	return bounds
}

// Connectors returns all connector objects in z-order.
func (s *Scene) Connectors() []*Object {
	out := []*Object{}
	for _, o := range s.objects {
		if o.Kind == KindConnector {
			out = append(out, o)
		}
	}
	return out
}

// =============================================================================
// Mutation
// =============================================================================

// Add inserts an object at the top of the z-order.
// Connector objects must reference endpoints currently present in the scene.
func (s *Scene) Add(o *Object) error {
	if o == nil || o.ID == "" {
		return errors.New(errors.ErrCodeInvalidObject, "object must have an id")
	}
	if _, dup := s.index[o.ID]; dup {
		return errors.New(errors.ErrCodeInvalidObject, "duplicate object id %q", o.ID)
	}
	if o.Kind == KindConnector {
		if _, ok := s.index[o.StartID]; !ok {
			return errors.New(errors.ErrCodeObjectNotFound, "connector start %q not in scene", o.StartID)
		}
		if _, ok := s.index[o.EndID]; !ok {
			return errors.New(errors.ErrCodeObjectNotFound, "connector end %q not in scene", o.EndID)
		}
	}
	s.objects = append(s.objects, o)
	s.index[o.ID] = o
	s.bus.Emit(Event{Kind: EventAdded, Object: o})
	return nil
}

// Remove deletes an object and cascades to its dependents: connectors
// referencing it, handles decorating it, and text labels bound to it.
func (s *Scene) Remove(id string) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}

	// Collect the cascade set to a fixpoint before mutating, so removing a
	// shape also removes connectors attached to its (removed) label and
	// event handlers observe a consistent scene.
	doomed := map[string]*Object{id: o}
	for {
		grew := false
		for _, other := range s.objects {
			if _, dead := doomed[other.ID]; dead {
				continue
			}
			dep := false
			switch other.Kind {
			case KindConnector:
				_, s1 := doomed[other.StartID]
				_, s2 := doomed[other.EndID]
				dep = s1 || s2
			case KindHandle:
				_, dep = doomed[other.OwnerID]
			case KindText:
				_, dep = doomed[other.ParentID]
			case KindShape, KindImage, KindGroup:
			}
			if dep {
				doomed[other.ID] = other
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	// Drop in z-order for deterministic event delivery.
	for _, d := range slices.Clone(s.objects) {
		if _, dead := doomed[d.ID]; dead {
			s.drop(d)
		}
	}
	return nil
}

// drop removes a single object and emits EventRemoved. Labels bound to a
// removed shape are already in the cascade set, so drop does not recurse.
func (s *Scene) drop(o *Object) {
	if _, ok := s.index[o.ID]; !ok {
		return // already cascaded
	}
	delete(s.index, o.ID)
	if i := slices.Index(s.objects, o); i >= 0 {
		s.objects = slices.Delete(s.objects, i, i+1)
	}
	s.bus.Emit(Event{Kind: EventRemoved, Object: o})
}

// Move translates an object by (dx, dy). A shape's bound labels and handles
// follow it. Emits EventMoved for every object that moved.
func (s *Scene) Move(id string, dx, dy float64) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	s.translate(o, dx, dy)
	for _, other := range s.objects {
		follows := (other.Kind == KindText && other.ParentID == id) ||
			(other.Kind == KindHandle && other.OwnerID == id)
		if follows {
			s.translate(other, dx, dy)
		}
	}
	return nil
}

// SetPosition moves an object so its top-left lands at (x, y).
func (s *Scene) SetPosition(id string, x, y float64) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	return s.Move(id, x-o.Left, y-o.Top)
}

func (s *Scene) translate(o *Object, dx, dy float64) {
	o.Left += dx
	o.Top += dy
	if o.Kind == KindConnector {
		o.Start = o.Start.Add(dx, dy)
		o.End = o.End.Add(dx, dy)
		o.ArrowAt = o.ArrowAt.Add(dx, dy)
	}
	s.bus.Emit(Event{Kind: EventMoved, Object: o, Delta: geo.Pt(dx, dy)})
}

// SetScale sets an object's scale factors and emits EventScaled.
func (s *Scene) SetScale(id string, sx, sy float64) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	o.ScaleX = sx
	o.ScaleY = sy
	s.bus.Emit(Event{Kind: EventScaled, Object: o})
	return nil
}

// SetRotation sets an object's rotation in degrees and emits EventRotated.
func (s *Scene) SetRotation(id string, degrees float64) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	o.Rotation = degrees
	s.bus.Emit(Event{Kind: EventRotated, Object: o})
	return nil
}

// Modify applies mutate to the object and emits EventModified. Use it for
// style and content edits that are not moves, scales, or rotations.
func (s *Scene) Modify(id string, mutate func(*Object)) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	mutate(o)
	s.bus.Emit(Event{Kind: EventModified, Object: o})
	return nil
}

// TranslateAll shifts every object by (dx, dy). The growth policy uses it to
// pull content away from the canvas origin.
func (s *Scene) TranslateAll(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, o := range s.objects {
		s.translate(o, dx, dy)
	}
}

// Clear removes every object and emits a single EventCleared.
func (s *Scene) Clear() {
	s.objects = nil
	s.index = make(map[string]*Object)
	s.bus.Emit(Event{Kind: EventCleared})
}

// =============================================================================
// Z-order
// =============================================================================

// BringForward moves the object one step up the z-order.
func (s *Scene) BringForward(id string) error { return s.reorder(id, 1, false) }

// SendBackward moves the object one step down the z-order.
func (s *Scene) SendBackward(id string) error { return s.reorder(id, -1, false) }

// BringToFront moves the object to the top of the z-order.
func (s *Scene) BringToFront(id string) error { return s.reorder(id, 1, true) }

// SendToBack moves the object to the bottom of the z-order.
func (s *Scene) SendToBack(id string) error { return s.reorder(id, -1, true) }

func (s *Scene) reorder(id string, dir int, extreme bool) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	i := slices.Index(s.objects, o)
	j := i + dir
	if extreme {
		if dir > 0 {
			j = len(s.objects) - 1
		} else {
			j = 0
		}
	}
	if j < 0 || j >= len(s.objects) || i == j {
		return nil
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	s.objects = slices.Insert(s.objects, j, o)
	s.bus.Emit(Event{Kind: EventModified, Object: o})
	return nil
}

// =============================================================================
// Grouping
// =============================================================================

// Group creates a group object spanning the given member ids. The group's
// geometry is the union of its members' bounding boxes.
func (s *Scene) Group(groupID string, memberIDs []string) (*Object, error) {
	if len(memberIDs) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "group needs at least 2 members")
	}
	var bounds geo.Rect
	for _, id := range memberIDs {
		m, ok := s.index[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeObjectNotFound, "group member %q not in scene", id)
		}
		bounds = bounds.Union(m.BoundingBox())
	}
	g := &Object{
		ID:        groupID,
		Kind:      KindGroup,
		Left:      bounds.Left,
		Top:       bounds.Top,
		Width:     bounds.Width,
		Height:    bounds.Height,
		MemberIDs: slices.Clone(memberIDs),
	}
	if err := s.Add(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Ungroup dissolves a group, leaving its members in place.
func (s *Scene) Ungroup(id string) error {
	o, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	if o.Kind != KindGroup {
		return errors.New(errors.ErrCodeInvalidObject, "object %q is not a group", id)
	}
	s.drop(o)
	return nil
}
