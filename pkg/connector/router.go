// Package connector keeps directed edges between scene objects geometrically
// correct. A Router recomputes border-intersection endpoints whenever either
// endpoint object moves, scales, or rotates; a Gesture drives the interactive
// drag-to-connect flow with magnetic snapping and handle feedback.
package connector

import (
	"math"

	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/scene"
)

// ArrowBackoff is how far the arrowhead sits back from the end border point,
// along the connector line, so the tip does not pierce the target shape.
const ArrowBackoff = 8.0

// Router owns connector routing for one scene. It subscribes to the scene
// bus on construction and reroutes affected connectors after every endpoint
// mutation until Close is called.
type Router struct {
	scene   *scene.Scene
	factory *scene.Factory
	sub     *scene.Subscription
}

// NewRouter attaches a router to the scene.
func NewRouter(sc *scene.Scene, f *scene.Factory) *Router {
	r := &Router{scene: sc, factory: f}
	r.sub = sc.Bus().Subscribe(r.onEvent,
		scene.EventMoved, scene.EventScaled, scene.EventRotated, scene.EventModified)
	return r
}

// Close detaches the router from the scene bus.
func (r *Router) Close() {
	if r.sub != nil {
		r.sub.Unsubscribe()
		r.sub = nil
	}
}

// Connect creates a routed connector between two objects and adds it to the
// scene. Missing endpoints make this a silent no-op returning nil, so a
// stale drag release never errors.
func (r *Router) Connect(startID, endID string, arrow bool) *scene.Object {
	start, ok := r.scene.Get(startID)
	if !ok {
		return nil
	}
	end, ok := r.scene.Get(endID)
	if !ok || startID == endID {
		return nil
	}

	c := r.factory.BuildConnector(start, end, arrow)
	route(c, start, end)
	if err := r.scene.Add(c); err != nil {
		return nil
	}
	return c
}

// Reroute recomputes a single connector's geometry from its current
// endpoint objects.
func (r *Router) Reroute(c *scene.Object) {
	start, ok := r.scene.Get(c.StartID)
	if !ok {
		return
	}
	end, ok := r.scene.Get(c.EndID)
	if !ok {
		return
	}
	route(c, start, end)
}

// onEvent reroutes every connector attached to the mutated object. A moved
// label reroutes its parent's connectors: label translation arrives as its
// own event when the label is dragged directly.
func (r *Router) onEvent(ev scene.Event) {
	if ev.Object == nil || ev.Object.Kind == scene.KindConnector {
		return
	}
	ids := map[string]bool{ev.Object.ID: true}
	if ev.Object.Kind == scene.KindText && ev.Object.ParentID != "" {
		ids[ev.Object.ParentID] = true
	}
	for _, c := range r.scene.Connectors() {
		if ids[c.StartID] || ids[c.EndID] {
			r.Reroute(c)
		}
	}
}

// route writes border-to-border geometry into the connector: each endpoint
// is the intersection of the other object's center ray with this object's
// bounding box, and the arrowhead is backed off along the line.
func route(c, start, end *scene.Object) {
	c.Start = geo.BorderPoint(start.BoundingBox(), end.Center())
	c.End = geo.BorderPoint(end.BoundingBox(), start.Center())

	dx := c.End.X - c.Start.X
	dy := c.End.Y - c.Start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		c.ArrowAt = c.End
		c.ArrowAngle = 0
		return
	}
	back := math.Min(ArrowBackoff, length)
	c.ArrowAt = geo.Pt(c.End.X-dx/length*back, c.End.Y-dy/length*back)
	c.ArrowAngle = math.Atan2(dy, dx) * 180 / math.Pi
}
