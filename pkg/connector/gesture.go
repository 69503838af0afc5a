package connector

import (
	"math"
	"time"

	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/render"
	"github.com/easelkit/easel/pkg/scene"
)

// Gesture states. A drag begins on a source object, tracks the pointer, and
// either snaps onto a target handle or releases into nothing.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateSnapped
)

var stateNames = map[State]string{
	StateIdle:     "idle",
	StateDragging: "dragging",
	StateSnapped:  "snapped",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Radii are the two attraction distances of the gesture: inside Magnet a
// handle highlights as the candidate target, inside Snap the preview locks
// onto the handle point. Magnet is deliberately wider than Snap so the
// highlight appears before the lock.
type Radii struct {
	Magnet float64
	Snap   float64
}

// DefaultRadii returns the standard attraction distances.
func DefaultRadii() Radii { return Radii{Magnet: 40, Snap: 25} }

// pulsePeriod is one full grow-shrink cycle of the highlighted handle.
const pulsePeriod = 800 * time.Millisecond

const (
	handleFill          = "#3182ce"
	handleHighlightFill = "#e53e3e"
)

// Preview is the dashed drag line shown while the gesture is active. It
// lives in the gesture, not the scene, so it can never leak into a
// serialized document.
type Preview struct {
	Start   geo.Point
	End     geo.Point
	Snapped bool
}

// Gesture is the drag-to-connect state machine for one scene. Methods are
// driven by the host's pointer events; handle decorations are added to the
// scene for the duration of the drag and removed on completion.
type Gesture struct {
	scene   *scene.Scene
	factory *scene.Factory
	router  *Router
	sched   render.FrameScheduler
	radii   Radii

	state    State
	sourceID string
	pointer  geo.Point
	targetID string
	handles  map[string]string // target object id -> handle id

	pulseGen   int
	pulsePhase float64
}

// NewGesture creates an idle gesture. sched may be nil; pulse feedback is
// then skipped.
func NewGesture(sc *scene.Scene, f *scene.Factory, r *Router, sched render.FrameScheduler, radii Radii) *Gesture {
	if radii.Magnet <= 0 || radii.Snap <= 0 {
		radii = DefaultRadii()
	}
	return &Gesture{
		scene:   sc,
		factory: f,
		router:  r,
		sched:   sched,
		radii:   radii,
		handles: map[string]string{},
	}
}

// State returns the current gesture state.
func (g *Gesture) State() State { return g.state }

// TargetID returns the id of the highlighted candidate target, or "".
func (g *Gesture) TargetID() string { return g.targetID }

// PulsePhase returns the highlight pulse position in [0, 1).
func (g *Gesture) PulsePhase() float64 { return g.pulsePhase }

// Begin starts a drag from the source object, revealing connection handles
// on every other connectable object. It reports whether a drag actually
// started: a missing or non-connectable source leaves the gesture idle.
func (g *Gesture) Begin(sourceID string) bool {
	if g.state != StateIdle {
		return false
	}
	src, ok := g.scene.Get(sourceID)
	if !ok || !connectable(src) {
		return false
	}

	g.sourceID = sourceID
	g.pointer = scene.HandlePoint(src)
	for _, o := range g.scene.Objects() {
		if !connectable(o) || o.ID == sourceID {
			continue
		}
		h := g.factory.BuildHandle(o)
		if err := g.scene.Add(h); err != nil {
			continue
		}
		g.handles[o.ID] = h.ID
	}
	g.state = StateDragging
	g.startPulse()
	return true
}

// Update tracks the pointer. The nearest handle within the magnet radius
// becomes the highlighted candidate; within the snap radius the gesture
// locks on.
func (g *Gesture) Update(p geo.Point) {
	if g.state == StateIdle {
		return
	}
	g.pointer = p

	bestID := ""
	bestDist := math.Inf(1)
	for targetID, handleID := range g.handles {
		h, ok := g.scene.Get(handleID)
		if !ok {
			continue
		}
		d := p.DistanceTo(h.Center())
		if d <= g.radii.Magnet && d < bestDist {
			bestID, bestDist = targetID, d
		}
	}

	g.setTarget(bestID)
	if bestID != "" && bestDist <= g.radii.Snap {
		g.state = StateSnapped
	} else {
		g.state = StateDragging
	}
}

// Preview returns the dashed line to draw for the current drag, and false
// when the gesture is idle. While snapped, the line terminates exactly on
// the target's handle point.
func (g *Gesture) Preview() (Preview, bool) {
	if g.state == StateIdle {
		return Preview{}, false
	}
	src, ok := g.scene.Get(g.sourceID)
	if !ok {
		return Preview{}, false
	}

	end := g.pointer
	snapped := false
	if g.state == StateSnapped && g.targetID != "" {
		if target, ok := g.scene.Get(g.targetID); ok {
			end = scene.HandlePoint(target)
			snapped = true
		}
	}
	return Preview{
		Start:   geo.BorderPoint(src.BoundingBox(), end),
		End:     end,
		Snapped: snapped,
	}, true
}

// End releases the drag. A snapped gesture creates the connector and
// returns it; anything else returns nil. Either way the gesture returns to
// idle and the handles disappear.
func (g *Gesture) End() *scene.Object {
	if g.state == StateIdle {
		return nil
	}
	var c *scene.Object
	if g.state == StateSnapped && g.targetID != "" {
		c = g.router.Connect(g.sourceID, g.targetID, true)
	}
	g.cleanup()
	return c
}

// Cancel abandons the drag without connecting.
func (g *Gesture) Cancel() {
	if g.state == StateIdle {
		return
	}
	g.cleanup()
}

func (g *Gesture) cleanup() {
	for _, handleID := range g.handles {
		// Handles can already be gone if their owner was removed mid-drag.
		_ = g.scene.Remove(handleID)
	}
	g.handles = map[string]string{}
	g.state = StateIdle
	g.sourceID = ""
	g.targetID = ""
	g.pulseGen++
	g.pulsePhase = 0
}

// setTarget moves the highlight to the new candidate. Handle styling is
// mutated directly: decorations are gesture-owned and never observed
// through the event bus.
func (g *Gesture) setTarget(targetID string) {
	if targetID == g.targetID {
		return
	}
	if prev, ok := g.handles[g.targetID]; ok {
		if h, ok := g.scene.Get(prev); ok {
			h.Fill = handleFill
			h.ScaleX, h.ScaleY = 1, 1
		}
	}
	g.targetID = targetID
	if next, ok := g.handles[targetID]; ok {
		if h, ok := g.scene.Get(next); ok {
			h.Fill = handleHighlightFill
		}
	}
}

// startPulse begins the grow-shrink animation on the highlighted handle.
// The generation counter stops stale frames after cleanup.
func (g *Gesture) startPulse() {
	if g.sched == nil {
		return
	}
	gen := g.pulseGen
	var start time.Time

	var step render.Frame
	step = func(now time.Time) {
		if g.pulseGen != gen || g.state == StateIdle {
			return
		}
		if start.IsZero() {
			start = now
		}
		elapsed := now.Sub(start) % pulsePeriod
		g.pulsePhase = float64(elapsed) / float64(pulsePeriod)

		// Map phase onto a symmetric 1.0 -> 1.3 -> 1.0 scale swing.
		swing := 1 - math.Abs(2*g.pulsePhase-1)
		scale := 1 + 0.3*swing
		if id, ok := g.handles[g.targetID]; ok {
			if h, ok := g.scene.Get(id); ok {
				h.ScaleX, h.ScaleY = scale, scale
			}
		}
		g.sched.RequestFrame(step)
	}
	g.sched.RequestFrame(step)
}

// connectable reports whether an object can be a connector endpoint.
func connectable(o *scene.Object) bool {
	switch o.Kind {
	case scene.KindShape, scene.KindText, scene.KindImage:
		return o.Kind != scene.KindText || o.ParentID == ""
	}
	return false
}
