package geo

import (
	"math"
	"testing"
)

func TestIntersects(t *testing.T) {
	base := RectOf(100, 100, 200, 100)

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"Identical", RectOf(100, 100, 200, 100), true},
		{"PartialOverlap", RectOf(250, 150, 100, 100), true},
		{"Contained", RectOf(150, 120, 20, 20), true},
		{"EntirelyLeft", RectOf(0, 100, 50, 100), false},
		{"EntirelyRight", RectOf(400, 100, 50, 100), false},
		{"EntirelyAbove", RectOf(100, 0, 200, 50), false},
		{"EntirelyBelow", RectOf(100, 300, 200, 50), false},
		{"SharedEdgeRight", RectOf(300, 100, 50, 100), false},
		{"SharedEdgeBottom", RectOf(100, 200, 200, 50), false},
		{"SharedCorner", RectOf(300, 200, 50, 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("reverse Intersects(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	a := RectOf(0, 0, 100, 100)
	b := RectOf(200, 300, 50, 50)

	got := a.Union(b)
	want := RectOf(0, 0, 250, 350)
	if got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}

	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %v, want %v", got, a)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty Union = %v, want %v", got, b)
	}
}

func TestBorderPoint(t *testing.T) {
	r := RectOf(0, 0, 100, 80)

	tests := []struct {
		name   string
		target Point
		want   Point
	}{
		{"DueRight", Pt(400, 40), Pt(100, 40)},
		{"DueLeft", Pt(-400, 40), Pt(0, 40)},
		{"DueDown", Pt(50, 500), Pt(50, 80)},
		{"DueUp", Pt(50, -500), Pt(50, 0)},
		{"Center", Pt(50, 40), Pt(50, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BorderPoint(r, tt.target)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("BorderPoint(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}

	// A diagonal ray must still land exactly on the border.
	got := BorderPoint(r, Pt(200, 160))
	if got.X != 100 {
		t.Errorf("diagonal exit X = %v, want 100", got.X)
	}
	if got.Y <= 40 || got.Y > 80 {
		t.Errorf("diagonal exit Y = %v, want within (40, 80]", got.Y)
	}
}

func TestEaseOutCubic(t *testing.T) {
	if got := EaseOutCubic(0); got != 0 {
		t.Errorf("EaseOutCubic(0) = %v, want 0", got)
	}
	if got := EaseOutCubic(1); got != 1 {
		t.Errorf("EaseOutCubic(1) = %v, want 1", got)
	}
	// Monotonic over the unit interval.
	prev := -1.0
	for i := 0; i <= 100; i++ {
		v := EaseOutCubic(float64(i) / 100)
		if v < prev {
			t.Fatalf("EaseOutCubic not monotonic at t=%v: %v < %v", float64(i)/100, v, prev)
		}
		prev = v
	}
	// Clamps outside the interval.
	if got := EaseOutCubic(2); got != 1 {
		t.Errorf("EaseOutCubic(2) = %v, want 1", got)
	}
}

func TestSnapTo(t *testing.T) {
	tests := []struct {
		v, step, want float64
	}{
		{33, 20, 40},
		{29, 20, 20},
		{30, 20, 40},
		{-7, 20, 0},
		{15, 0, 15},
	}
	for _, tt := range tests {
		if got := SnapTo(tt.v, tt.step); got != tt.want {
			t.Errorf("SnapTo(%v, %v) = %v, want %v", tt.v, tt.step, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0.01, 0.1, 5.0); got != 0.1 {
		t.Errorf("Clamp low = %v, want 0.1", got)
	}
	if got := Clamp(50, 0.1, 5.0); got != 5.0 {
		t.Errorf("Clamp high = %v, want 5.0", got)
	}
	if got := Clamp(1, 0.1, 5.0); got != 1 {
		t.Errorf("Clamp mid = %v, want 1", got)
	}
}
