// Package geo provides the coordinate and bounds primitives shared by the
// canvas engine: points, sizes, axis-aligned rectangles, overlap testing,
// and the border-intersection math used to route connectors.
//
// All coordinates are in scene space (pixels, origin at the canvas top-left,
// y growing downward). Rotation is expressed in degrees.
package geo

import (
	"fmt"
	"math"
)

// =============================================================================
// Point
// =============================================================================

// Point is a position in scene coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point) String() string { return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y) }

// =============================================================================
// Size
// =============================================================================

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// IsZero returns true if either dimension is not positive.
func (s Size) IsZero() bool { return s.Width <= 0 || s.Height <= 0 }

// Max returns the component-wise maximum of s and o.
func (s Size) Max(o Size) Size {
	return Size{Width: math.Max(s.Width, o.Width), Height: math.Max(s.Height, o.Height)}
}

// Min returns the component-wise minimum of s and o.
func (s Size) Min(o Size) Size {
	return Size{Width: math.Min(s.Width, o.Width), Height: math.Min(s.Height, o.Height)}
}

// =============================================================================
// Rect
// =============================================================================

// Rect is an axis-aligned rectangle identified by its top-left corner.
type Rect struct {
	Left   float64 `json:"left" bson:"left"`
	Top    float64 `json:"top" bson:"top"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// RectOf constructs a Rect from a top-left corner and a size.
func RectOf(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Left >= r.Left && o.Top >= r.Top && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects reports whether r and o overlap. Two rectangles overlap unless
// one is entirely left of, right of, above, or below the other; rectangles
// that merely share an edge do not overlap.
func (r Rect) Intersects(o Rect) bool {
	if r.Right() <= o.Left || o.Right() <= r.Left {
		return false
	}
	if r.Bottom() <= o.Top || o.Bottom() <= r.Top {
		return false
	}
	return true
}

// Union returns the smallest rectangle containing both r and o.
// An empty rectangle acts as the identity.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	left := math.Min(r.Left, o.Left)
	top := math.Min(r.Top, o.Top)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Inset returns r shrunk by d on every side. Negative d grows the rectangle.
func (r Rect) Inset(d float64) Rect {
	return Rect{Left: r.Left + d, Top: r.Top + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

func (r Rect) String() string {
	return fmt.Sprintf("{%.2f, %.2f, %.2fx%.2f}", r.Left, r.Top, r.Width, r.Height)
}

// =============================================================================
// Border intersection
// =============================================================================

// BorderPoint returns the point on r's border where the ray from r's center
// toward target exits the rectangle. The edge pair is selected by comparing
// |dx|/halfWidth against |dy|/halfHeight, then the edge equation is solved
// for the remaining coordinate. If target coincides with the center, the
// center itself is returned.
func BorderPoint(r Rect, target Point) Point {
	c := r.Center()
	dx := target.X - c.X
	dy := target.Y - c.Y
	if dx == 0 && dy == 0 {
		return c
	}

	hw := r.Width / 2
	hh := r.Height / 2

	// Degenerate rectangles collapse to their center line.
	if hw <= 0 || hh <= 0 {
		return c
	}

	if math.Abs(dx)/hw >= math.Abs(dy)/hh {
		// Exits through the left or right edge.
		x := c.X + sign(dx)*hw
		y := c.Y + dy*(hw/math.Abs(dx))
		return Point{X: x, Y: y}
	}
	// Exits through the top or bottom edge.
	y := c.Y + sign(dy)*hh
	x := c.X + dx*(hh/math.Abs(dy))
	return Point{X: x, Y: y}
}

// =============================================================================
// Scalar helpers
// =============================================================================

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t in [0, 1].
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// EaseOutCubic maps t in [0, 1] through the ease-out cubic curve 1-(1-t)^3.
// The curve is monotonic and reaches exactly 1 at t=1.
func EaseOutCubic(t float64) float64 {
	t = Clamp(t, 0, 1)
	inv := 1 - t
	return 1 - inv*inv*inv
}

// SnapTo rounds v to the nearest multiple of step. A non-positive step
// returns v unchanged.
func SnapTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
