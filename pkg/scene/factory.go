package scene

import (
	"time"

	"github.com/google/uuid"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/geo"
)

// =============================================================================
// Shape factory
// =============================================================================

// Def is a declarative shape definition: the variant to build plus its
// default geometry and style, with an optional glyph overlaid at the shape's
// center.
type Def struct {
	Name        string    `json:"name"`
	Shape       ShapeKind `json:"-"`
	Size        geo.Size  `json:"size"`
	Radius      float64   `json:"radius,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"`
	Glyph       string    `json:"glyph,omitempty"`
}

// Factory builds scene objects from registered shape definitions. The zero
// set of tunables comes from DefaultDefs; hosts register their own palette
// on top.
type Factory struct {
	defs map[string]Def
	now  func() time.Time
}

// NewFactory creates a factory seeded with DefaultDefs.
func NewFactory() *Factory {
	f := &Factory{defs: make(map[string]Def), now: time.Now}
	for _, d := range DefaultDefs() {
		f.Register(d)
	}
	return f
}

// Register adds or replaces a shape definition under its name.
func (f *Factory) Register(d Def) { f.defs[d.Name] = d }

// Def returns the registered definition for name.
func (f *Factory) Def(name string) (Def, bool) {
	d, ok := f.defs[name]
	return d, ok
}

// DefaultDefs returns the built-in shape palette.
func DefaultDefs() []Def {
	return []Def{
		{Name: "process", Shape: ShapeRectangle, Size: geo.Size{Width: 120, Height: 80}, Fill: "#e8f1fb", Stroke: "#2b6cb0", StrokeWidth: 2, Opacity: 1},
		{Name: "decision", Shape: ShapeDiamond, Size: geo.Size{Width: 120, Height: 100}, Fill: "#fef5e7", Stroke: "#b7791f", StrokeWidth: 2, Opacity: 1},
		{Name: "terminator", Shape: ShapeEllipse, Size: geo.Size{Width: 120, Height: 60}, Fill: "#e6fffa", Stroke: "#2c7a7b", StrokeWidth: 2, Opacity: 1},
		{Name: "node", Shape: ShapeCircle, Radius: 40, Fill: "#faf5ff", Stroke: "#6b46c1", StrokeWidth: 2, Opacity: 1},
	}
}

// BuildShape instantiates the named definition at the given position.
func (f *Factory) BuildShape(name string, at geo.Point) (*Object, error) {
	d, ok := f.defs[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no shape definition %q", name)
	}
	o := &Object{
		ID:          uuid.NewString(),
		Kind:        KindShape,
		CreatedAt:   f.now(),
		Left:        at.X,
		Top:         at.Y,
		Width:       d.Size.Width,
		Height:      d.Size.Height,
		Radius:      d.Radius,
		Shape:       d.Shape,
		Glyph:       d.Glyph,
		Fill:        d.Fill,
		Stroke:      d.Stroke,
		StrokeWidth: d.StrokeWidth,
		Opacity:     d.Opacity,
	}
	if d.Shape == ShapeCircle {
		o.Width = 2 * d.Radius
		o.Height = 2 * d.Radius
	}
	return o, nil
}

// BuildText creates a free-standing text object.
func (f *Factory) BuildText(text string, at geo.Point, fontSize float64) *Object {
	if fontSize <= 0 {
		fontSize = 16
	}
	return &Object{
		ID:        uuid.NewString(),
		Kind:      KindText,
		CreatedAt: f.now(),
		Left:      at.X,
		Top:       at.Y,
		Width:     estimateTextWidth(text, fontSize),
		Height:    fontSize * 1.4,
		Text:      text,
		FontSize:  fontSize,
		Fill:      "#1a202c",
		Opacity:   1,
	}
}

// BuildLabel creates a text object bound to a parent shape, centered on the
// shape's bounding box. The scene keeps the label following the shape.
func (f *Factory) BuildLabel(parent *Object, text string, fontSize float64) *Object {
	label := f.BuildText(text, geo.Pt(0, 0), fontSize)
	label.ParentID = parent.ID
	box := parent.BoundingBox()
	c := box.Center()
	label.Left = c.X - label.Width/2
	label.Top = c.Y - label.Height/2
	return label
}

// BuildImage creates an image object referencing ref (a URL or data URL).
func (f *Factory) BuildImage(ref string, at geo.Point, size geo.Size) *Object {
	if size.IsZero() {
		size = geo.Size{Width: 160, Height: 120}
	}
	return &Object{
		ID:        uuid.NewString(),
		Kind:      KindImage,
		CreatedAt: f.now(),
		Left:      at.X,
		Top:       at.Y,
		Width:     size.Width,
		Height:    size.Height,
		ImageRef:  ref,
		Opacity:   1,
	}
}

// BuildHandle creates a connection handle decorating owner, placed at the
// handle's fixed offset point (center of the owner's right edge).
func (f *Factory) BuildHandle(owner *Object) *Object {
	p := HandlePoint(owner)
	const handleSize = 12
	return &Object{
		ID:        uuid.NewString(),
		Kind:      KindHandle,
		CreatedAt: f.now(),
		Left:      p.X - handleSize/2,
		Top:       p.Y - handleSize/2,
		Width:     handleSize,
		Height:    handleSize,
		OwnerID:   owner.ID,
		Fill:      "#3182ce",
		Opacity:   1,
	}
}

// BuildConnector creates a connector between two objects. The caller routes
// it (see the connector package) before or right after insertion.
func (f *Factory) BuildConnector(start, end *Object, arrow bool) *Object {
	return &Object{
		ID:          uuid.NewString(),
		Kind:        KindConnector,
		CreatedAt:   f.now(),
		StartID:     start.ID,
		EndID:       end.ID,
		Arrow:       arrow,
		Stroke:      "#4a5568",
		StrokeWidth: 2,
		Opacity:     1,
	}
}

// HandlePoint returns the fixed anchor point of an object's connection
// handle: the center of its right edge.
func HandlePoint(o *Object) geo.Point {
	box := o.BoundingBox()
	return geo.Pt(box.Right(), box.Center().Y)
}

// estimateTextWidth approximates rendered width without consulting font
// metrics; the rendering layer owns exact measurement.
func estimateTextWidth(text string, fontSize float64) float64 {
	w := float64(len([]rune(text))) * fontSize * 0.6
	if w < fontSize {
		w = fontSize
	}
	return w
}
