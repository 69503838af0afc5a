package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/timeutil"
)

func shapeAt(id string, left, top, w, h float64) *scene.Object {
	return &scene.Object{
		ID: id, Kind: scene.KindShape, Shape: scene.ShapeRectangle,
		Left: left, Top: top, Width: w, Height: h,
	}
}

func newTestManager(t *testing.T) (*scene.Scene, *Manager, *timeutil.FakeClock) {
	t.Helper()
	sc := scene.New()
	clock := timeutil.NewFakeClock(time.Unix(0, 0))
	m := NewManager(sc, clock, Meta{ID: "doc-1", Name: "Test"}, DefaultConfig(), nil, nil)
	t.Cleanup(m.Close)
	return sc, m, clock
}

func mustAdd(t *testing.T, sc *scene.Scene, o *scene.Object) {
	t.Helper()
	if err := sc.Add(o); err != nil {
		t.Fatal(err)
	}
}

// settle lets the capture debounce fire.
func settle(clock *timeutil.FakeClock) {
	clock.Advance(500 * time.Millisecond)
}

func objectsJSON(t *testing.T, sc *scene.Scene) []byte {
	t.Helper()
	doc := sc.Export("doc-1", "Test", 0, time.Unix(0, 0), time.Unix(0, 0))
	b, err := json.Marshal(doc.Objects)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestDebouncedCaptureCollapsesBursts(t *testing.T) {
	sc, m, clock := newTestManager(t)

	mustAdd(t, sc, shapeAt("a", 0, 0, 100, 80))
	for i := 0; i < 5; i++ {
		if err := sc.Move("a", 10, 0); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(m.Entries()); got != 1 {
		t.Fatalf("entries before settle = %d, want 1 (baseline only)", got)
	}
	if !m.Pending() {
		t.Fatal("Pending() = false during a mutation burst")
	}

	settle(clock)
	entries := m.Entries()
	if got := len(entries); got != 2 {
		t.Fatalf("entries after settle = %d, want 2", got)
	}
	if got := entries[1].Label; got != "Object Moved" {
		t.Errorf("entry label = %q, want %q", got, "Object Moved")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	sc, m, clock := newTestManager(t)
	initial := objectsJSON(t, sc)

	var states [][]byte
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		mustAdd(t, sc, shapeAt(id, 0, 0, 100, 80))
		settle(clock)
		states = append(states, objectsJSON(t, sc))
	}

	for range ids {
		if !m.Undo() {
			t.Fatal("Undo() = false with history remaining")
		}
	}
	if got := objectsJSON(t, sc); string(got) != string(initial) {
		t.Errorf("after N undos scene = %s, want initial %s", got, initial)
	}
	if m.Undo() {
		t.Error("Undo() = true at the baseline entry")
	}

	for i := range ids {
		if !m.Redo() {
			t.Fatal("Redo() = false with future remaining")
		}
		if got := objectsJSON(t, sc); string(got) != string(states[i]) {
			t.Errorf("after redo %d scene = %s, want %s", i+1, got, states[i])
		}
	}
	if m.Redo() {
		t.Error("Redo() = true at the newest entry")
	}
}

func TestBranchTruncationDisablesRedo(t *testing.T) {
	sc, m, clock := newTestManager(t)
	for _, id := range []string{"a", "b", "c"} {
		mustAdd(t, sc, shapeAt(id, 0, 0, 100, 80))
		settle(clock)
	}

	m.Undo()
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("CanRedo() = false immediately after undo")
	}

	mustAdd(t, sc, shapeAt("d", 200, 0, 100, 80))
	settle(clock)

	if m.CanRedo() {
		t.Error("CanRedo() = true after a mutation following undo")
	}
	if m.Redo() {
		t.Error("Redo() succeeded into a truncated branch")
	}
}

func TestUndoFlushesPendingBurst(t *testing.T) {
	sc, m, _ := newTestManager(t)
	mustAdd(t, sc, shapeAt("a", 0, 0, 100, 80))

	// Undo before the debounce settles: the burst must be captured first so
	// the add is undone, not lost.
	if !m.Undo() {
		t.Fatal("Undo() = false with a pending burst")
	}
	if sc.Len() != 0 {
		t.Errorf("scene has %d objects after undo, want 0", sc.Len())
	}
	if !m.CanRedo() {
		t.Error("CanRedo() = false after undoing a flushed burst")
	}
}

func TestEntryCapTrimsOldest(t *testing.T) {
	sc := scene.New()
	clock := timeutil.NewFakeClock(time.Unix(0, 0))
	cfg := DefaultConfig()
	cfg.MaxEntries = 5
	m := NewManager(sc, clock, Meta{ID: "doc-1", Name: "Test"}, cfg, nil, nil)
	defer m.Close()

	for i := 0; i < 10; i++ {
		if err := sc.Add(shapeAt("o"+string(rune('a'+i)), float64(i*10), 0, 5, 5)); err != nil {
			t.Fatal(err)
		}
		settle(clock)
	}

	if got := len(m.Entries()); got != 5 {
		t.Fatalf("entries = %d, want cap 5", got)
	}
	if got := m.Cursor(); got != 4 {
		t.Errorf("cursor = %d, want 4", got)
	}
}

func TestVersionRestoreRoundTrip(t *testing.T) {
	sc, m, clock := newTestManager(t)
	mustAdd(t, sc, shapeAt("a", 40, 40, 120, 80))
	settle(clock)
	atV1 := objectsJSON(t, sc)

	v1 := m.CreateVersion("v1", false)
	if v1 == nil || v1.AutoSave {
		t.Fatalf("CreateVersion = %+v, want a manual version", v1)
	}

	mustAdd(t, sc, shapeAt("b", 300, 40, 120, 80))
	if err := sc.Move("a", 50, 50); err != nil {
		t.Fatal(err)
	}
	settle(clock)

	if err := m.RestoreVersion(v1.ID); err != nil {
		t.Fatal(err)
	}
	if got := objectsJSON(t, sc); string(got) != string(atV1) {
		t.Errorf("restored scene = %s, want v1 state %s", got, atV1)
	}
	if got := m.Entries(); got[len(got)-1].Label != "Version Restored" {
		t.Errorf("last entry = %q, want %q", got[len(got)-1].Label, "Version Restored")
	}
}

func TestRestoreUnknownVersionFails(t *testing.T) {
	_, m, _ := newTestManager(t)
	if err := m.RestoreVersion("ghost"); err == nil {
		t.Error("RestoreVersion of unknown id succeeded")
	}
}

func TestVersionPruneEvictsOldestAutosaveFirst(t *testing.T) {
	sc := scene.New()
	clock := timeutil.NewFakeClock(time.Unix(0, 0))
	cfg := DefaultConfig()
	cfg.MaxVersions = 3
	m := NewManager(sc, clock, Meta{ID: "doc-1", Name: "Test"}, cfg, nil, nil)
	defer m.Close()

	m.CreateVersion("manual-1", false)
	auto := m.CreateVersion("auto-1", true)
	m.CreateVersion("manual-2", false)
	m.CreateVersion("manual-3", false)

	got := m.Versions()
	if len(got) != 3 {
		t.Fatalf("versions = %d, want 3", len(got))
	}
	for _, v := range got {
		if v.ID == auto.ID {
			t.Error("oldest autosave survived pruning")
		}
	}

	// With no autosaves left, the oldest manual version goes next.
	m.CreateVersion("manual-4", false)
	got = m.Versions()
	if got[0].Name != "manual-2" {
		t.Errorf("oldest surviving version = %q, want %q", got[0].Name, "manual-2")
	}
}

func TestAutosaveOnlyWhenDirty(t *testing.T) {
	sc, m, clock := newTestManager(t)

	m.Autosave()
	if got := len(m.Versions()); got != 0 {
		t.Fatalf("autosave of a clean scene created %d versions", got)
	}

	mustAdd(t, sc, shapeAt("a", 0, 0, 100, 80))
	settle(clock)
	m.Autosave()

	got := m.Versions()
	if len(got) != 1 || !got[0].AutoSave {
		t.Fatalf("versions = %+v, want one autosave", got)
	}
	if m.Dirty() {
		t.Error("Dirty() = true after a successful autosave")
	}

	// No further changes: the next tick is a no-op.
	m.Autosave()
	if got := len(m.Versions()); got != 1 {
		t.Errorf("idle autosave tick created a version (total %d)", got)
	}
}

func TestThumbnailerFeedsEntriesAndVersions(t *testing.T) {
	sc := scene.New()
	clock := timeutil.NewFakeClock(time.Unix(0, 0))
	thumb := func(doc *scene.Document) string { return "data:image/png;base64,xyz" }
	m := NewManager(sc, clock, Meta{ID: "doc-1", Name: "Test"}, DefaultConfig(), thumb, nil)
	defer m.Close()

	if got := m.Entries()[0].Thumbnail; got == "" {
		t.Error("baseline entry has no thumbnail")
	}
	if got := m.CreateVersion("v1", false).Thumbnail; got == "" {
		t.Error("version has no thumbnail")
	}
}
