package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/easelkit/easel/pkg/scene"
)

func testDoc() *scene.Document {
	return &scene.Document{
		ID:   "doc-1",
		Name: "Test",
		Objects: []scene.Record{
			{Kind: "shape", Shape: "rectangle", Object: scene.Object{
				ID: "a", Left: 40, Top: 40, Width: 120, Height: 80,
				Fill: "#e8f1fb", Stroke: "#2b6cb0", StrokeWidth: 2,
			}},
			{Kind: "text", Object: scene.Object{ID: "t", Left: 60, Top: 70, Text: "Start", FontSize: 16}},
		},
	}
}

func TestRenderProducesSurfaceSizedImage(t *testing.T) {
	r, err := NewRaster()
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}

	img, err := r.Render(testDoc(), 800, 600, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("image size = %dx%d, want 800x600", b.Dx(), b.Dy())
	}
}

func TestEncodePNGRoundTrips(t *testing.T) {
	r, err := NewRaster()
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf, testDoc(), 400, 300, 0.5); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("scaled width = %d, want 200", img.Bounds().Dx())
	}
}

func TestRenderRejectsNilDocument(t *testing.T) {
	r, _ := NewRaster()
	if _, err := r.Render(nil, 800, 600, 1); err == nil {
		t.Error("nil document accepted")
	}
}

func TestThumbnailDataURL(t *testing.T) {
	r, _ := NewRaster()
	got := Thumbnail(r, testDoc(), 800, 600)
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("thumbnail prefix = %.40q, want data URL", got)
	}
}

func TestThumbnailDegradesToEmpty(t *testing.T) {
	if got := Thumbnail(nil, testDoc(), 800, 600); got != "" {
		t.Errorf("Thumbnail(nil renderer) = %q, want empty", got)
	}
	r, _ := NewRaster()
	if got := Thumbnail(r, nil, 800, 600); got != "" {
		t.Errorf("Thumbnail(nil doc) = %q, want empty", got)
	}
}

func TestManualSchedulerPump(t *testing.T) {
	s := NewManualScheduler()

	ran := 0
	s.RequestFrame(func(now time.Time) {
		ran++
		// Re-request from inside the frame, like a running animation.
		s.RequestFrame(func(time.Time) { ran++ })
	})

	if got := s.Pump(time.Unix(0, 0)); got != 1 {
		t.Errorf("first pump ran %d frames, want 1", got)
	}
	if s.PendingFrames() != 1 {
		t.Errorf("pending after pump = %d, want 1", s.PendingFrames())
	}
	s.Pump(time.Unix(1, 0))
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
}
