package scene

import (
	"bytes"
	"testing"
	"time"
)

func buildScene(t *testing.T) *Scene {
	t.Helper()
	s := New()
	s.Add(shapeAt("a", 40, 40, 120, 80))
	s.Add(shapeAt("b", 300, 40, 120, 80))
	s.Add(&Object{ID: "label", Kind: KindText, ParentID: "a", Text: "Start", FontSize: 16, Left: 70, Top: 70})
	s.Add(&Object{ID: "h", Kind: KindHandle, OwnerID: "a", Left: 160, Top: 74})
	s.Add(&Object{ID: "conn", Kind: KindConnector, StartID: "a", EndID: "b", Arrow: true})
	return s
}

func TestExportExcludesDecorations(t *testing.T) {
	s := buildScene(t)
	doc := s.Export("doc-1", "Test", 1, time.Unix(100, 0), time.Unix(200, 0))

	if len(doc.Objects) != 4 {
		t.Fatalf("exported objects = %d, want 4 (handle excluded)", len(doc.Objects))
	}
	for _, rec := range doc.Objects {
		if rec.Kind == "handle" {
			t.Error("handle record in exported document")
		}
	}
	if doc.SizeBytes <= 0 {
		t.Error("SizeBytes not populated")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := buildScene(t)
	doc := s.Export("doc-1", "Test", 3, time.Unix(100, 0), time.Unix(200, 0))

	data, err := MarshalDocument(doc)
	if err != nil {
		t.Fatalf("MarshalDocument: %v", err)
	}
	decoded, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("UnmarshalDocument: %v", err)
	}

	loaded := New()
	if err := loaded.Load(decoded); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The reloaded scene serializes identically.
	again, err := loaded.Snapshot("doc-1", "Test", 3, time.Unix(100, 0), time.Unix(200, 0))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("round-tripped document differs from original")
	}

	// Typed fields survive the wire.
	a, ok := loaded.Get("a")
	if !ok {
		t.Fatal("object a missing after load")
	}
	if a.Kind != KindShape || a.Shape != ShapeRectangle {
		t.Errorf("a kind/shape = %v/%v, want shape/rectangle", a.Kind, a.Shape)
	}
	conn, _ := loaded.Get("conn")
	if conn == nil || conn.Kind != KindConnector || !conn.Arrow {
		t.Errorf("connector not restored: %+v", conn)
	}
}

func TestLoadDropsOrphanedConnectors(t *testing.T) {
	doc := &Document{
		ID: "doc-1",
		Objects: []Record{
			{Kind: "shape", Shape: "rectangle", Object: Object{ID: "a", Width: 10, Height: 10}},
			{Kind: "connector", Object: Object{ID: "conn", StartID: "a", EndID: "gone"}},
		},
	}

	s := New()
	if err := s.Load(doc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := s.Get("conn"); ok {
		t.Error("orphaned connector loaded")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("valid object dropped")
	}
}

func TestLoadFailureLeavesSceneUntouched(t *testing.T) {
	s := New()
	s.Add(shapeAt("keep", 0, 0, 10, 10))

	bad := &Document{
		ID: "doc-1",
		Objects: []Record{
			{Kind: "shape", Shape: "rectangle", Object: Object{ID: "x", Width: 10, Height: 10}},
			{Kind: "no-such-kind", Object: Object{ID: "y"}},
		},
	}
	if err := s.Load(bad); err == nil {
		t.Fatal("Load accepted malformed document")
	}

	if _, ok := s.Get("keep"); !ok {
		t.Error("scene mutated by failed load")
	}
	if _, ok := s.Get("x"); ok {
		t.Error("partial load visible after failure")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	if _, err := UnmarshalDocument([]byte("{not json")); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestLoadRejectsDecorationRecords(t *testing.T) {
	doc := &Document{
		Objects: []Record{{Kind: "handle", Object: Object{ID: "h"}}},
	}
	if err := New().Load(doc); err == nil {
		t.Error("handle record accepted by Load")
	}
}
