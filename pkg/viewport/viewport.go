// Package viewport owns the transform between scene coordinates and the
// visible container: zoom, pan, container-size observation, fit/reset/pan
// animations, and visibility testing.
//
// The transform maps a scene point p to the screen as p*zoom + pan. Zoom is
// always within bounds, so the transform is always invertible.
package viewport

import (
	"time"

	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/render"
	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/surface"
	"github.com/easelkit/easel/pkg/timeutil"
)

// Config holds the viewport tunables.
type Config struct {
	MinZoom        float64       // lower zoom bound
	MaxZoom        float64       // upper zoom bound
	FitMaxZoom     float64       // fit-to-content never zooms in past this
	Margin         float64       // surface margin beyond content bounds
	NoiseThreshold float64       // resize deltas below this are ignored
	ResizeDebounce time.Duration // quiet period for container resizes
	AnimDuration   time.Duration // animated transition length
}

// DefaultConfig returns the standard viewport tunables.
func DefaultConfig() Config {
	return Config{
		MinZoom:        0.1,
		MaxZoom:        5.0,
		FitMaxZoom:     2.0,
		Margin:         100,
		NoiseThreshold: 10,
		ResizeDebounce: 100 * time.Millisecond,
		AnimDuration:   300 * time.Millisecond,
	}
}

// Bounds is the derived sizing information computed from the scene.
type Bounds struct {
	ContentBounds   geo.Rect
	ObjectCount     int
	IsEmpty         bool
	RecommendedSize geo.Size
}

// Viewport tracks zoom and pan over a scene and keeps the backing surface
// sized to its content.
type Viewport struct {
	cfg     Config
	scene   *scene.Scene
	surface *surface.Surface
	sched   render.FrameScheduler

	zoom      float64
	pan       geo.Point
	container geo.Size

	resizeDeb *timeutil.Debouncer

	// animGen invalidates in-flight animations: every new transition or
	// direct transform change bumps it, and stale frames observe the
	// mismatch and stop.
	animGen int
}

// New creates a viewport at zoom 1, pan (0,0).
func New(sc *scene.Scene, surf *surface.Surface, sched render.FrameScheduler, clock timeutil.Clock, cfg Config) *Viewport {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Viewport{
		cfg:       cfg,
		scene:     sc,
		surface:   surf,
		sched:     sched,
		zoom:      1,
		resizeDeb: timeutil.NewDebouncer(clock, cfg.ResizeDebounce),
	}
}

// =============================================================================
// Transform
// =============================================================================

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen pixels.
func (v *Viewport) Pan() geo.Point { return v.pan }

// SetZoom sets the zoom factor, clamped to the configured bounds, keeping
// the container center fixed in scene space.
func (v *Viewport) SetZoom(z float64) {
	z = geo.Clamp(z, v.cfg.MinZoom, v.cfg.MaxZoom)
	if z == v.zoom {
		return
	}
	v.animGen++
	if !v.container.IsZero() {
		// Anchor the zoom at the container center.
		cx, cy := v.container.Width/2, v.container.Height/2
		sceneX := (cx - v.pan.X) / v.zoom
		sceneY := (cy - v.pan.Y) / v.zoom
		v.pan = geo.Pt(cx-sceneX*z, cy-sceneY*z)
	}
	v.zoom = z
}

// SetPan sets the pan offset directly.
func (v *Viewport) SetPan(p geo.Point) {
	v.animGen++
	v.pan = p
}

// ContainerSize returns the last observed container dimensions.
func (v *Viewport) ContainerSize() geo.Size { return v.container }

// VisibleRect returns the region of scene space currently inside the
// container. A zero container yields a zero rect.
func (v *Viewport) VisibleRect() geo.Rect {
	if v.container.IsZero() {
		return geo.Rect{}
	}
	return geo.RectOf(
		-v.pan.X/v.zoom,
		-v.pan.Y/v.zoom,
		v.container.Width/v.zoom,
		v.container.Height/v.zoom,
	)
}

// =============================================================================
// Container observation
// =============================================================================

// ObserveContainerSize records a new container size and schedules a
// debounced surface recomputation. A zero-sized container is a no-op, not
// an error.
func (v *Viewport) ObserveContainerSize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	v.container = geo.Size{Width: w, Height: h}
	v.resizeDeb.Trigger(v.applyContainerResize)
}

// applyContainerResize recomputes the backing-surface size after the resize
// debounce settles. Content-driven sizing wins when the scene is non-empty;
// container-driven sizing when it is empty. Deltas under the noise
// threshold are ignored.
func (v *Viewport) applyContainerResize() {
	if v.container.IsZero() {
		return
	}
	b := v.ComputeBounds()
	target := b.RecommendedSize
	if b.IsEmpty {
		target = v.container.Max(v.surface.Min()).Min(v.surface.Max())
	}

	cur := v.surface.Size()
	dw := target.Width - cur.Width
	dh := target.Height - cur.Height
	if abs(dw) <= v.cfg.NoiseThreshold && abs(dh) <= v.cfg.NoiseThreshold {
		return
	}
	v.surface.SetSize(target)
}

// ComputeBounds scans all non-decoration objects and derives the sizing
// recommendation: content bounds plus the symmetric margin, floored at the
// surface minimum and capped at its maximum.
func (v *Viewport) ComputeBounds() Bounds {
	content := v.scene.ContentBounds()
	count := len(v.scene.Content())
	rec := geo.Size{
		Width:  content.Right() + v.cfg.Margin,
		Height: content.Bottom() + v.cfg.Margin,
	}
	rec = rec.Max(v.surface.Min()).Min(v.surface.Max())
	return Bounds{
		ContentBounds:   content,
		ObjectCount:     count,
		IsEmpty:         count == 0,
		RecommendedSize: rec,
	}
}

// =============================================================================
// Commands
// =============================================================================

// FitToContent zooms and pans so the whole content is visible and centered.
// Empty scenes delegate to ResetView.
func (v *Viewport) FitToContent(animate bool) {
	b := v.ComputeBounds()
	if b.IsEmpty || v.container.IsZero() {
		v.ResetView(animate)
		return
	}
	content := b.ContentBounds
	zoom := minf(v.container.Width/content.Width, v.container.Height/content.Height)
	zoom = minf(zoom, v.cfg.FitMaxZoom)
	zoom = geo.Clamp(zoom, v.cfg.MinZoom, v.cfg.MaxZoom)

	c := content.Center()
	pan := geo.Pt(
		v.container.Width/2-c.X*zoom,
		v.container.Height/2-c.Y*zoom,
	)
	v.transitionTo(zoom, pan, animate)
}

// ResetView returns to zoom 1, pan (0,0).
func (v *Viewport) ResetView(animate bool) {
	v.transitionTo(1, geo.Pt(0, 0), animate)
}

// PanToObject pans so the object's center lands at the container center,
// preserving the current zoom.
func (v *Viewport) PanToObject(o *scene.Object, animate bool) {
	if o == nil || v.container.IsZero() {
		return
	}
	c := o.Center()
	pan := geo.Pt(
		v.container.Width/2-c.X*v.zoom,
		v.container.Height/2-c.Y*v.zoom,
	)
	v.transitionTo(v.zoom, pan, animate)
}

// IsVisible reports whether the object's bounding box intersects the
// current viewport rectangle.
func (v *Viewport) IsVisible(o *scene.Object) bool {
	if o == nil {
		return false
	}
	return v.VisibleRect().Intersects(o.BoundingBox())
}

// EnsureVisible pans to the object if it is not currently visible.
func (v *Viewport) EnsureVisible(o *scene.Object, animate bool) {
	if o == nil || v.IsVisible(o) {
		return
	}
	v.PanToObject(o, animate)
}

// =============================================================================
// Animation
// =============================================================================

// transitionTo moves the transform to the target, either immediately or via
// an ease-out cubic animation over the configured duration. Starting a new
// transition cancels any in-flight one; a cancelled frame never writes a
// stale transform.
func (v *Viewport) transitionTo(zoom float64, pan geo.Point, animate bool) {
	v.animGen++
	if !animate || v.sched == nil || v.cfg.AnimDuration <= 0 {
		v.zoom = zoom
		v.pan = pan
		return
	}

	gen := v.animGen
	startZoom, startPan := v.zoom, v.pan
	var startTime time.Time

	var step render.Frame
	step = func(now time.Time) {
		if v.animGen != gen {
			return // superseded by a newer gesture or transition
		}
		if startTime.IsZero() {
			startTime = now
		}
		t := float64(now.Sub(startTime)) / float64(v.cfg.AnimDuration)
		if t >= 1 {
			// Land exactly on the target: no overshoot, no residual drift.
			v.zoom = zoom
			v.pan = pan
			return
		}
		e := geo.EaseOutCubic(t)
		v.zoom = geo.Lerp(startZoom, zoom, e)
		v.pan = geo.Pt(geo.Lerp(startPan.X, pan.X, e), geo.Lerp(startPan.Y, pan.Y, e))
		v.sched.RequestFrame(step)
	}
	v.sched.RequestFrame(step)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
