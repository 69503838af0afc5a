// Package surface owns the backing drawing surface: the addressable canvas
// area behind the viewport, and the growth policy that expands it as the
// scene's content spreads out.
package surface

import (
	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/scene"
)

// Default surface limits.
var (
	DefaultMinSize = geo.Size{Width: 800, Height: 600}
	DefaultMaxSize = geo.Size{Width: 4000, Height: 3000}
)

// Surface is the backing drawing area. Its size is independent of the
// visible viewport and only ever changes through SetSize or the growth
// policy.
type Surface struct {
	size geo.Size
	min  geo.Size
	max  geo.Size
}

// New creates a surface at the minimum size with the given limits.
// Zero limits fall back to the package defaults.
func New(min, max geo.Size) *Surface {
	if min.IsZero() {
		min = DefaultMinSize
	}
	if max.IsZero() {
		max = DefaultMaxSize
	}
	return &Surface{size: min, min: min, max: max}
}

// Size returns the current surface size.
func (s *Surface) Size() geo.Size { return s.size }

// Min returns the minimum allowed size.
func (s *Surface) Min() geo.Size { return s.min }

// Max returns the maximum allowed size.
func (s *Surface) Max() geo.Size { return s.max }

// SetSize resizes the surface, clamped to the configured limits.
// Reports whether the size changed.
func (s *Surface) SetSize(size geo.Size) bool {
	clamped := size.Max(s.min).Min(s.max)
	if clamped == s.size {
		return false
	}
	s.size = clamped
	return true
}

// Rect returns the surface as a rectangle at the origin.
func (s *Surface) Rect() geo.Rect {
	return geo.RectOf(0, 0, s.size.Width, s.size.Height)
}

// =============================================================================
// Growth policy
// =============================================================================

// Policy decides when the surface grows and when content is pulled back from
// the origin. Growth and content-shift are independent; either may fire
// alone. The policy never shrinks the surface; shrinking is an explicit
// user action outside this package.
type Policy struct {
	// Margin is the free space demanded beyond the content's maximum
	// extent before growth triggers.
	Margin float64

	// EdgeMargin is the minimum distance content keeps from the origin.
	EdgeMargin float64

	// GrowthFactor is the geometric growth multiplier applied so repeated
	// small overflows do not cause repeated resizes.
	GrowthFactor float64
}

// DefaultPolicy returns the standard growth tunables.
func DefaultPolicy() Policy {
	return Policy{Margin: 100, EdgeMargin: 20, GrowthFactor: 1.2}
}

// Result reports what GrowIfNeeded changed.
type Result struct {
	Resized bool
	Shifted bool
	NewSize geo.Size
	Offset  geo.Point // translation applied to all objects, zero if none
}

// GrowIfNeeded scans the scene's content extents and applies the policy:
// grow the surface when content plus margin exceeds it, and translate all
// objects away from the origin when any content sits closer than
// EdgeMargin. Objects already satisfying the margin are never moved except
// as part of the uniform shift. Empty scenes and degenerate sizes are
// no-ops, never errors.
func (p Policy) GrowIfNeeded(s *Surface, sc *scene.Scene) Result {
	res := Result{NewSize: s.Size()}
	bounds := sc.ContentBounds()
	if bounds.IsEmpty() {
		return res
	}

	// Content shift: the smallest positive offset restoring the edge margin.
	var dx, dy float64
	if bounds.Left < p.EdgeMargin {
		dx = p.EdgeMargin - bounds.Left
	}
	if bounds.Top < p.EdgeMargin {
		dy = p.EdgeMargin - bounds.Top
	}
	if dx > 0 || dy > 0 {
		sc.TranslateAll(dx, dy)
		res.Shifted = true
		res.Offset = geo.Pt(dx, dy)
		bounds = sc.ContentBounds()
	}

	// Growth: geometric so the next few insertions are free.
	cur := s.Size()
	needed := geo.Size{Width: bounds.Right() + p.Margin, Height: bounds.Bottom() + p.Margin}
	target := cur
	if needed.Width > cur.Width {
		target.Width = max(needed.Width, cur.Width*p.growthFactor())
	}
	if needed.Height > cur.Height {
		target.Height = max(needed.Height, cur.Height*p.growthFactor())
	}
	if target != cur {
		if s.SetSize(target) {
			res.Resized = true
		}
	}
	res.NewSize = s.Size()
	return res
}

func (p Policy) growthFactor() float64 {
	if p.GrowthFactor <= 1 {
		return 1.2
	}
	return p.GrowthFactor
}
