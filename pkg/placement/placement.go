// Package placement computes non-overlapping insertion points for new
// objects. The strategy is tiered and deterministic: visible-center probe,
// workflow continuation next to the most recent object, visible corner
// probe, grid scan, and an unconditional fallback. The first tier that
// yields a free, in-bounds rectangle wins.
package placement

import (
	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/scene"
)

// =============================================================================
// Options
// =============================================================================

// Area biases where probes land. Corners change the probe corner and the
// grid-scan direction; the tier order itself never changes.
type Area int

const (
	AreaAuto Area = iota
	AreaCenter
	AreaTopLeft
	AreaTopRight
	AreaBottomLeft
	AreaBottomRight
)

var areaNames = map[Area]string{
	AreaAuto:        "auto",
	AreaCenter:      "center",
	AreaTopLeft:     "top-left",
	AreaTopRight:    "top-right",
	AreaBottomLeft:  "bottom-left",
	AreaBottomRight: "bottom-right",
}

func (a Area) String() string {
	if s, ok := areaNames[a]; ok {
		return s
	}
	return "unknown"
}

// Reason names the tier that produced a placement.
type Reason int

const (
	ReasonVisibleCenter Reason = iota
	ReasonContinuation
	ReasonCornerProbe
	ReasonGridScan
	ReasonFallback
)

var reasonNames = map[Reason]string{
	ReasonVisibleCenter: "visible-center",
	ReasonContinuation:  "continuation",
	ReasonCornerProbe:   "corner-probe",
	ReasonGridScan:      "grid-scan",
	ReasonFallback:      "fallback",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return "unknown"
}

// Default tunables. Spacing is the gap kept between a continuation
// placement and its anchor object.
const (
	DefaultSpacing  = 60.0
	DefaultGridSize = 20.0
)

// Options control a single placement request.
type Options struct {
	AvoidOverlap bool    // when false, the first probe always wins
	Area         Area    // probe bias
	Spacing      float64 // continuation gap; 0 means DefaultSpacing
	GridSnap     bool    // round the result to the grid after placement
	GridSize     float64 // grid step; 0 means DefaultGridSize
}

// DefaultOptions returns the standard request: overlap avoidance on,
// auto area, default spacing and grid.
func DefaultOptions() Options {
	return Options{
		AvoidOverlap: true,
		Spacing:      DefaultSpacing,
		GridSize:     DefaultGridSize,
	}
}

// Result is the chosen insertion point and the tier that produced it.
type Result struct {
	X, Y   float64
	Reason Reason
}

// Point returns the result as a geo.Point.
func (r Result) Point() geo.Point { return geo.Pt(r.X, r.Y) }

// =============================================================================
// Engine
// =============================================================================

// Engine finds placements against a live scene.
type Engine struct {
	scene *scene.Scene
}

// NewEngine creates a placement engine over the scene.
func NewEngine(sc *scene.Scene) *Engine {
	return &Engine{scene: sc}
}

// Find computes the top-left corner for a new object of the given size.
// visible is the current viewport rectangle in scene coordinates (may be
// empty when no container is attached); canvas is the backing-surface
// rectangle. Degenerate sizes are clamped rather than rejected.
func (e *Engine) Find(size geo.Size, visible, canvas geo.Rect, opts Options) Result {
	if opts.Spacing <= 0 {
		opts.Spacing = DefaultSpacing
	}
	if opts.GridSize <= 0 {
		opts.GridSize = DefaultGridSize
	}
	if size.Width <= 0 {
		size.Width = 1
	}
	if size.Height <= 0 {
		size.Height = 1
	}
	if canvas.IsEmpty() {
		canvas = geo.RectOf(0, 0, size.Width+2*opts.Spacing, size.Height+2*opts.Spacing)
	}

	obstacles := e.obstacles()
	res := e.find(size, visible, canvas, opts, obstacles)
	if opts.GridSnap {
		res.X = geo.SnapTo(res.X, opts.GridSize)
		res.Y = geo.SnapTo(res.Y, opts.GridSize)
	}
	// Snapping or probing must never push the object out of bounds.
	res.X = geo.Clamp(res.X, canvas.Left, maxf(canvas.Left, canvas.Right()-size.Width))
	res.Y = geo.Clamp(res.Y, canvas.Top, maxf(canvas.Top, canvas.Bottom()-size.Height))
	return res
}

func (e *Engine) find(size geo.Size, visible, canvas geo.Rect, opts Options, obstacles []geo.Rect) Result {
	fits := func(p geo.Point) bool {
		r := geo.RectOf(p.X, p.Y, size.Width, size.Height)
		if !canvas.ContainsRect(r) {
			return false
		}
		if !opts.AvoidOverlap {
			return true
		}
		for _, o := range obstacles {
			if r.Intersects(o) {
				return false
			}
		}
		return true
	}

	// Tier 1: center of the visible region.
	if !visible.IsEmpty() {
		c := visible.Center()
		p := geo.Pt(c.X-size.Width/2, c.Y-size.Height/2)
		if fits(p) {
			return Result{X: p.X, Y: p.Y, Reason: ReasonVisibleCenter}
		}
	}

	// Tier 2: continue the workflow next to the most recent object, first
	// to its right, then directly below it.
	if last := e.scene.LastContent(); last != nil {
		bb := last.BoundingBox()
		for _, p := range []geo.Point{
			geo.Pt(bb.Right()+opts.Spacing, bb.Top),
			geo.Pt(bb.Left, bb.Bottom()+opts.Spacing),
		} {
			if fits(p) {
				return Result{X: p.X, Y: p.Y, Reason: ReasonContinuation}
			}
		}
	}

	// Tier 3: visible corner probe, biased by the requested area.
	if !visible.IsEmpty() {
		p := cornerProbe(visible, size, opts.Spacing, opts.Area)
		if fits(p) {
			return Result{X: p.X, Y: p.Y, Reason: ReasonCornerProbe}
		}
	}

	// Tier 4: grid scan, visible region first, then the whole canvas.
	if !visible.IsEmpty() {
		if p, ok := gridScan(visible, size, opts, fits); ok {
			return Result{X: p.X, Y: p.Y, Reason: ReasonGridScan}
		}
	}
	if p, ok := gridScan(canvas, size, opts, fits); ok {
		return Result{X: p.X, Y: p.Y, Reason: ReasonGridScan}
	}

	// Tier 5: unconditional fallback at the canvas origin plus spacing.
	return Result{
		X:      canvas.Left + opts.Spacing,
		Y:      canvas.Top + opts.Spacing,
		Reason: ReasonFallback,
	}
}

// obstacles collects bounding boxes of everything a new object must not
// cover. Decorations (handles, previews) are invisible to placement.
func (e *Engine) obstacles() []geo.Rect {
	var out []geo.Rect
	for _, o := range e.scene.Objects() {
		if o.Decoration() {
			continue
		}
		out = append(out, o.BoundingBox())
	}
	return out
}

// cornerProbe returns the probe point for the chosen corner of the visible
// region, inset by spacing. Auto and center both fall back to top-left,
// matching the fixed tier order.
func cornerProbe(visible geo.Rect, size geo.Size, spacing float64, area Area) geo.Point {
	switch area {
	case AreaTopRight:
		return geo.Pt(visible.Right()-size.Width-spacing, visible.Top+spacing)
	case AreaBottomLeft:
		return geo.Pt(visible.Left+spacing, visible.Bottom()-size.Height-spacing)
	case AreaBottomRight:
		return geo.Pt(visible.Right()-size.Width-spacing, visible.Bottom()-size.Height-spacing)
	default:
		return geo.Pt(visible.Left+spacing, visible.Top+spacing)
	}
}

// gridScan walks the region row-major in grid steps and returns the first
// accepted cell. Bottom-biased areas scan rows bottom-up; right-biased
// areas scan columns right-to-left.
func gridScan(region geo.Rect, size geo.Size, opts Options, fits func(geo.Point) bool) (geo.Point, bool) {
	if region.IsEmpty() {
		return geo.Point{}, false
	}
	step := opts.GridSize

	var xs, ys []float64
	for x := region.Left; x+size.Width <= region.Right(); x += step {
		xs = append(xs, x)
	}
	for y := region.Top; y+size.Height <= region.Bottom(); y += step {
		ys = append(ys, y)
	}
	if opts.Area == AreaTopRight || opts.Area == AreaBottomRight {
		reverse(xs)
	}
	if opts.Area == AreaBottomLeft || opts.Area == AreaBottomRight {
		reverse(ys)
	}

	for _, y := range ys {
		for _, x := range xs {
			p := geo.Pt(x, y)
			if fits(p) {
				return p, true
			}
		}
	}
	return geo.Point{}, false
}

func reverse(vals []float64) {
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
