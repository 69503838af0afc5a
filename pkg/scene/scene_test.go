package scene

import (
	"testing"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/geo"
)

func shapeAt(id string, left, top, w, h float64) *Object {
	return &Object{ID: id, Kind: KindShape, Shape: ShapeRectangle, Left: left, Top: top, Width: w, Height: h}
}

func TestAddRejectsDuplicateID(t *testing.T) {
	s := New()
	if err := s.Add(shapeAt("a", 0, 0, 10, 10)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := s.Add(shapeAt("a", 50, 50, 10, 10))
	if !errors.Is(err, errors.ErrCodeInvalidObject) {
		t.Errorf("duplicate Add error = %v, want INVALID_OBJECT", err)
	}
}

func TestAddConnectorRequiresEndpoints(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 0, 0, 10, 10))

	conn := &Object{ID: "c", Kind: KindConnector, StartID: "a", EndID: "ghost"}
	if err := s.Add(conn); !errors.Is(err, errors.ErrCodeObjectNotFound) {
		t.Errorf("Add connector with missing endpoint error = %v, want OBJECT_NOT_FOUND", err)
	}
}

func TestRemoveCascadesToConnectorsHandlesLabels(t *testing.T) {
	s := New()
	a := shapeAt("a", 0, 0, 100, 80)
	b := shapeAt("b", 400, 0, 100, 80)
	s.Add(a)
	s.Add(b)
	s.Add(&Object{ID: "label", Kind: KindText, ParentID: "a", Text: "A"})
	s.Add(&Object{ID: "handle", Kind: KindHandle, OwnerID: "a"})
	s.Add(&Object{ID: "conn", Kind: KindConnector, StartID: "a", EndID: "b"})

	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	for _, id := range []string{"a", "label", "handle", "conn"} {
		if _, ok := s.Get(id); ok {
			t.Errorf("object %q still in scene after cascade", id)
		}
	}
	if _, ok := s.Get("b"); !ok {
		t.Error("unrelated object removed by cascade")
	}
}

func TestRemoveCascadeReachesConnectorOnLabel(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 0, 0, 100, 80))
	s.Add(shapeAt("b", 400, 0, 100, 80))
	s.Add(&Object{ID: "label", Kind: KindText, ParentID: "a"})
	s.Add(&Object{ID: "conn", Kind: KindConnector, StartID: "label", EndID: "b"})

	s.Remove("a")
	if _, ok := s.Get("conn"); ok {
		t.Error("connector on cascaded label survived removal")
	}
}

func TestMoveCarriesLabelsAndHandles(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 40, 40, 120, 80))
	s.Add(&Object{ID: "label", Kind: KindText, ParentID: "a", Left: 80, Top: 70})
	s.Add(&Object{ID: "handle", Kind: KindHandle, OwnerID: "a", Left: 160, Top: 74})

	if err := s.Move("a", 50, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}

	a, _ := s.Get("a")
	if a.Left != 90 {
		t.Errorf("shape Left = %v, want 90", a.Left)
	}
	label, _ := s.Get("label")
	if label.Left != 130 {
		t.Errorf("label Left = %v, want 130", label.Left)
	}
	handle, _ := s.Get("handle")
	if handle.Left != 210 {
		t.Errorf("handle Left = %v, want 210", handle.Left)
	}
}

func TestContentBoundsSkipsDecorationsAndConnectors(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 40, 40, 120, 80))
	s.Add(shapeAt("b", 300, 100, 100, 60))
	s.Add(&Object{ID: "h", Kind: KindHandle, OwnerID: "a", Left: 5000, Top: 5000, Width: 12, Height: 12})
	s.Add(&Object{ID: "c", Kind: KindConnector, StartID: "a", EndID: "b",
		Start: geo.Pt(160, 80), End: geo.Pt(300, 130)})

	got := s.ContentBounds()
	want := geo.RectOf(40, 40, 360, 120)
	if got != want {
		t.Errorf("ContentBounds = %v, want %v", got, want)
	}
}

func TestLastContentSkipsDecorations(t *testing.T) {
	s := New()
	if got := s.LastContent(); got != nil {
		t.Errorf("LastContent on empty scene = %v, want nil", got)
	}
	s.Add(shapeAt("a", 0, 0, 10, 10))
	s.Add(&Object{ID: "h", Kind: KindHandle, OwnerID: "a"})
	if got := s.LastContent(); got == nil || got.ID != "a" {
		t.Errorf("LastContent = %v, want shape a", got)
	}
}

func TestZOrder(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 0, 0, 10, 10))
	s.Add(shapeAt("b", 0, 0, 10, 10))
	s.Add(shapeAt("c", 0, 0, 10, 10))

	order := func() []string {
		ids := []string{}
		for _, o := range s.Objects() {
			ids = append(ids, o.ID)
		}
		return ids
	}

	s.BringToFront("a")
	if got := order(); got[2] != "a" {
		t.Errorf("after BringToFront order = %v, want a last", got)
	}
	s.SendToBack("a")
	if got := order(); got[0] != "a" {
		t.Errorf("after SendToBack order = %v, want a first", got)
	}
	s.BringForward("a")
	if got := order(); got[1] != "a" {
		t.Errorf("after BringForward order = %v, want a second", got)
	}
	s.SendBackward("a")
	if got := order(); got[0] != "a" {
		t.Errorf("after SendBackward order = %v, want a first", got)
	}
}

func TestGroupUngroup(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 0, 0, 100, 100))
	s.Add(shapeAt("b", 200, 300, 100, 100))

	g, err := s.Group("g", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	if got := g.BoundingBox(); got != geo.RectOf(0, 0, 300, 400) {
		t.Errorf("group bounds = %v, want {0, 0, 300x400}", got)
	}

	if err := s.Ungroup("g"); err != nil {
		t.Fatalf("Ungroup: %v", err)
	}
	if _, ok := s.Get("g"); ok {
		t.Error("group still present after Ungroup")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("member removed by Ungroup")
	}

	if _, err := s.Group("g2", []string{"a"}); err == nil {
		t.Error("single-member group accepted")
	}
}

func TestTranslateAll(t *testing.T) {
	s := New()
	s.Add(shapeAt("a", 10, 10, 10, 10))
	s.Add(shapeAt("b", 50, 50, 10, 10))
	s.TranslateAll(25, 30)

	a, _ := s.Get("a")
	if a.Left != 35 || a.Top != 40 {
		t.Errorf("a at (%v, %v), want (35, 40)", a.Left, a.Top)
	}
	b, _ := s.Get("b")
	if b.Left != 75 || b.Top != 80 {
		t.Errorf("b at (%v, %v), want (75, 80)", b.Left, b.Top)
	}
}
