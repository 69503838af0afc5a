package scene

import (
	"time"

	"github.com/easelkit/easel/pkg/geo"
)

// =============================================================================
// Object - the unified scene object
// =============================================================================

// Object is a single visual object in the scene. One struct covers every
// Kind; variant-specific fields are meaningful only for their variant and
// zero otherwise. Exhaustive switches over Kind keep the variants honest.
//
// Relationship fields hold IDs, never pointers: a Text may name the Shape it
// labels (ParentID), a Connector names its endpoints (StartID/EndID), and a
// Handle names the shape it decorates (OwnerID). None of these references
// own the target's lifetime; the Scene cascades removals so no reference
// ever dangles.
type Object struct {
	ID        string    `json:"id" bson:"id"`
	Kind      Kind      `json:"-" bson:"-"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Geometry
	Left     float64 `json:"left" bson:"left"`
	Top      float64 `json:"top" bson:"top"`
	Width    float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height   float64 `json:"height,omitempty" bson:"height,omitempty"`
	Radius   float64 `json:"radius,omitempty" bson:"radius,omitempty"`
	Rotation float64 `json:"rotation,omitempty" bson:"rotation,omitempty"`
	ScaleX   float64 `json:"scale_x,omitempty" bson:"scale_x,omitempty"`
	ScaleY   float64 `json:"scale_y,omitempty" bson:"scale_y,omitempty"`

	// Style
	Fill        string  `json:"fill,omitempty" bson:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty" bson:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty" bson:"stroke_width,omitempty"`
	Opacity     float64 `json:"opacity,omitempty" bson:"opacity,omitempty"`

	// Shape variant
	Shape ShapeKind `json:"-" bson:"-"`
	Glyph string    `json:"glyph,omitempty" bson:"glyph,omitempty"`

	// Text variant
	Text     string  `json:"text,omitempty" bson:"text,omitempty"`
	FontSize float64 `json:"font_size,omitempty" bson:"font_size,omitempty"`
	ParentID string  `json:"parent_id,omitempty" bson:"parent_id,omitempty"`

	// Image variant
	ImageRef string `json:"image_ref,omitempty" bson:"image_ref,omitempty"`

	// Connector variant
	StartID    string    `json:"start_id,omitempty" bson:"start_id,omitempty"`
	EndID      string    `json:"end_id,omitempty" bson:"end_id,omitempty"`
	Start      geo.Point `json:"start,omitempty" bson:"start,omitempty"`
	End        geo.Point `json:"end,omitempty" bson:"end,omitempty"`
	Arrow      bool      `json:"arrow,omitempty" bson:"arrow,omitempty"`
	ArrowAt    geo.Point `json:"arrow_at,omitempty" bson:"arrow_at,omitempty"`
	ArrowAngle float64   `json:"arrow_angle,omitempty" bson:"arrow_angle,omitempty"`

	// Handle variant
	OwnerID string `json:"-" bson:"-"`

	// Group variant
	MemberIDs []string `json:"member_ids,omitempty" bson:"member_ids,omitempty"`
}

// Decoration reports whether the object is a non-content helper.
// Decorations are excluded from serialization, placement, overlap testing,
// and bounds computation.
func (o *Object) Decoration() bool {
	switch o.Kind {
	case KindHandle:
		return true
	case KindShape, KindText, KindImage, KindConnector, KindGroup:
		return false
	}
	return false
}

// Content reports whether the object participates in bounds and placement.
// Connectors span content objects but contribute no area of their own, so
// they are content for serialization but not for bounds.
func (o *Object) Content() bool {
	switch o.Kind {
	case KindShape, KindText, KindImage:
		return true
	case KindConnector, KindHandle, KindGroup:
		return false
	}
	return false
}

// BoundingBox returns the object's axis-aligned bounding box in scene
// coordinates, accounting for scale. Circles use their radius; connectors
// span their routed endpoints.
func (o *Object) BoundingBox() geo.Rect {
	switch o.Kind {
	case KindShape:
		if o.Shape == ShapeCircle {
			d := 2 * o.Radius * o.scaleX()
			return geo.RectOf(o.Left, o.Top, d, 2*o.Radius*o.scaleY())
		}
		return geo.RectOf(o.Left, o.Top, o.Width*o.scaleX(), o.Height*o.scaleY())
	case KindConnector:
		left := min(o.Start.X, o.End.X)
		top := min(o.Start.Y, o.End.Y)
		return geo.RectOf(left, top, max(o.Start.X, o.End.X)-left, max(o.Start.Y, o.End.Y)-top)
	case KindText, KindImage, KindHandle, KindGroup:
		return geo.RectOf(o.Left, o.Top, o.Width*o.scaleX(), o.Height*o.scaleY())
	}
	return geo.RectOf(o.Left, o.Top, o.Width, o.Height)
}

// Center returns the center of the bounding box.
func (o *Object) Center() geo.Point { return o.BoundingBox().Center() }

// Clone returns a deep copy of the object with a new identity left to the
// caller (the clone keeps the source ID; callers reassign it).
func (o *Object) Clone() *Object {
	dup := *o
	if o.MemberIDs != nil {
		dup.MemberIDs = append([]string(nil), o.MemberIDs...)
	}
	return &dup
}

func (o *Object) scaleX() float64 {
	if o.ScaleX == 0 {
		return 1
	}
	return o.ScaleX
}

func (o *Object) scaleY() float64 {
	if o.ScaleY == 0 {
		return 1
	}
	return o.ScaleY
}
