package surface

import (
	"testing"

	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/scene"
)

func addShape(s *scene.Scene, id string, left, top, w, h float64) {
	s.Add(&scene.Object{ID: id, Kind: scene.KindShape, Left: left, Top: top, Width: w, Height: h})
}

func TestSetSizeClampsToLimits(t *testing.T) {
	s := New(geo.Size{Width: 800, Height: 600}, geo.Size{Width: 4000, Height: 3000})

	if s.SetSize(geo.Size{Width: 100, Height: 100}) {
		t.Error("shrinking below minimum reported a change")
	}
	if got := s.Size(); got.Width != 800 || got.Height != 600 {
		t.Errorf("size = %v, want 800x600", got)
	}

	s.SetSize(geo.Size{Width: 9999, Height: 9999})
	if got := s.Size(); got.Width != 4000 || got.Height != 3000 {
		t.Errorf("size = %v, want capped 4000x3000", got)
	}
}

func TestGrowIfNeededEmptySceneNoop(t *testing.T) {
	s := New(geo.Size{}, geo.Size{})
	res := DefaultPolicy().GrowIfNeeded(s, scene.New())
	if res.Resized || res.Shifted {
		t.Errorf("empty scene changed surface: %+v", res)
	}
}

func TestGrowthTriggersOnOverflow(t *testing.T) {
	s := New(geo.Size{}, geo.Size{})
	sc := scene.New()
	addShape(sc, "a", 700, 100, 200, 100) // right edge 900 > 800-margin

	res := DefaultPolicy().GrowIfNeeded(s, sc)
	if !res.Resized {
		t.Fatal("overflowing content did not grow the surface")
	}
	// Growth is geometric: at least current * 1.2.
	if got := s.Size().Width; got < 960 {
		t.Errorf("width = %v, want >= 960 (800 * 1.2)", got)
	}
	if got := s.Size().Width; got < 900+100 {
		t.Errorf("width = %v, want >= needed 1000", got)
	}
}

func TestGrowthMonotonic(t *testing.T) {
	s := New(geo.Size{}, geo.Size{})
	sc := scene.New()
	p := DefaultPolicy()

	prev := s.Size()
	for i := 0; i < 12; i++ {
		addShape(sc, string(rune('a'+i)), float64(700+i*150), float64(100+i*120), 120, 80)
		p.GrowIfNeeded(s, sc)
		cur := s.Size()
		if cur.Width < prev.Width || cur.Height < prev.Height {
			t.Fatalf("surface shrank: %v -> %v", prev, cur)
		}
		prev = cur
	}
}

func TestContentShiftRestoresEdgeMargin(t *testing.T) {
	s := New(geo.Size{}, geo.Size{})
	sc := scene.New()
	addShape(sc, "a", 5, 3, 100, 100)
	addShape(sc, "b", 300, 300, 100, 100)

	res := DefaultPolicy().GrowIfNeeded(s, sc)
	if !res.Shifted {
		t.Fatal("content at the origin edge not shifted")
	}
	if res.Offset.X != 15 || res.Offset.Y != 17 {
		t.Errorf("offset = %v, want (15, 17)", res.Offset)
	}

	a, _ := sc.Get("a")
	if a.Left != 20 || a.Top != 20 {
		t.Errorf("a at (%v, %v), want (20, 20)", a.Left, a.Top)
	}
	// Objects already inside the margin move by the same uniform shift.
	b, _ := sc.Get("b")
	if b.Left != 315 || b.Top != 317 {
		t.Errorf("b at (%v, %v), want (315, 317)", b.Left, b.Top)
	}
}

func TestShiftWithoutGrowth(t *testing.T) {
	s := New(geo.Size{}, geo.Size{})
	sc := scene.New()
	addShape(sc, "a", 0, 0, 50, 50)

	res := DefaultPolicy().GrowIfNeeded(s, sc)
	if !res.Shifted {
		t.Error("expected shift")
	}
	if res.Resized {
		t.Error("small content grew the surface")
	}
}

func TestNoShiftWhenMarginSatisfied(t *testing.T) {
	s := New(geo.Size{}, geo.Size{})
	sc := scene.New()
	addShape(sc, "a", 100, 100, 50, 50)

	res := DefaultPolicy().GrowIfNeeded(s, sc)
	if res.Shifted || res.Resized {
		t.Errorf("well-placed content changed surface: %+v", res)
	}
	a, _ := sc.Get("a")
	if a.Left != 100 || a.Top != 100 {
		t.Errorf("object moved without cause: (%v, %v)", a.Left, a.Top)
	}
}
