package scene

import "fmt"

// =============================================================================
// Object kinds - closed variant set
// =============================================================================

// Kind identifies the variant of a scene object. The set is closed: every
// switch over Kind in this module is exhaustive, and serialization maps
// kinds to strings only at the document boundary.
type Kind int

const (
	// KindShape is a geometric shape (rectangle, ellipse, diamond, ...).
	KindShape Kind = iota

	// KindText is a free-standing or shape-bound text label.
	KindText

	// KindImage is a placed raster image.
	KindImage

	// KindConnector is a directed edge between two scene objects.
	KindConnector

	// KindHandle is a connection handle decorating a shape. Handles are
	// decorations: excluded from serialization, placement, and bounds.
	KindHandle

	// KindGroup is a logical grouping of other objects.
	KindGroup
)

// kindNames is the wire encoding of each kind.
var kindNames = map[Kind]string{
	KindShape:     "shape",
	KindText:      "text",
	KindImage:     "image",
	KindConnector: "connector",
	KindHandle:    "handle",
	KindGroup:     "group",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown object kind %q", s)
}

// =============================================================================
// Shape variants
// =============================================================================

// ShapeKind identifies the geometry variant of a KindShape object.
type ShapeKind int

const (
	// ShapeRectangle is an axis-aligned rectangle.
	ShapeRectangle ShapeKind = iota

	// ShapeEllipse is an ellipse inscribed in the object's bounds.
	ShapeEllipse

	// ShapeCircle is a circle described by the object's radius.
	ShapeCircle

	// ShapeDiamond is a rhombus inscribed in the object's bounds.
	ShapeDiamond
)

var shapeNames = map[ShapeKind]string{
	ShapeRectangle: "rectangle",
	ShapeEllipse:   "ellipse",
	ShapeCircle:    "circle",
	ShapeDiamond:   "diamond",
}

// String returns the wire name of the shape variant.
func (s ShapeKind) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ShapeKind(%d)", int(s))
}

// ParseShapeKind maps a wire name back to a ShapeKind.
func ParseShapeKind(s string) (ShapeKind, error) {
	for k, name := range shapeNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shape kind %q", s)
}
