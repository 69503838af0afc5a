package editor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/easelkit/easel/pkg/export"
	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/render"
	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/store"
	"github.com/easelkit/easel/pkg/timeutil"
)

func newTestEditor(t *testing.T) (*Editor, *timeutil.FakeClock) {
	t.Helper()
	clock := timeutil.NewFakeClock(time.Unix(0, 0))
	e := New("Test", store.NewMemoryStore(), nil, render.NewManualScheduler(), clock, nil, DefaultConfig())
	t.Cleanup(e.Close)
	return e, clock
}

func settle(clock *timeutil.FakeClock) {
	clock.Advance(500 * time.Millisecond)
}

func TestWorkflowScenario(t *testing.T) {
	e, clock := newTestEditor(t)

	// First shape at an explicit position.
	at := geo.Pt(40, 40)
	first, err := e.AddShape("process", &at)
	if err != nil {
		t.Fatal(err)
	}
	settle(clock)

	// Second shape through placement: with no container attached the
	// engine continues the workflow to the right of the first shape.
	second, err := e.AddShape("process", nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Left < 220 {
		t.Errorf("second shape left = %v, want >= 220 (right of the first plus spacing)", second.Left)
	}
	settle(clock)

	c := e.Connect(first.ID, second.ID)
	if c == nil {
		t.Fatal("Connect returned nil")
	}
	startBefore := c.Start
	settle(clock)

	// Moving the first shape shifts the connector start by the same delta.
	if err := e.Move(first.ID, 50, 0); err != nil {
		t.Fatal(err)
	}
	if got, want := c.Start.X, startBefore.X+50; got != want {
		t.Errorf("connector start x = %v, want %v", got, want)
	}
	if c.Start.Y != startBefore.Y {
		t.Errorf("connector start y moved: %v -> %v", startBefore.Y, c.Start.Y)
	}
}

func TestUndoRedoThroughEditor(t *testing.T) {
	e, clock := newTestEditor(t)

	if _, err := e.AddShape("decision", nil); err != nil {
		t.Fatal(err)
	}
	settle(clock)

	if !e.Undo() {
		t.Fatal("Undo() = false after a mutation")
	}
	if got := len(e.Scene().Content()); got != 0 {
		t.Errorf("scene has %d objects after undo, want 0", got)
	}
	if !e.Redo() {
		t.Fatal("Redo() = false after undo")
	}
	if got := len(e.Scene().Content()); got != 1 {
		t.Errorf("scene has %d objects after redo, want 1", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clock := timeutil.NewFakeClock(time.Unix(0, 0))
	st := store.NewMemoryStore()
	e := New("Flow", st, nil, nil, clock, nil, DefaultConfig())
	defer e.Close()
	ctx := context.Background()

	if _, err := e.AddShape("terminator", nil); err != nil {
		t.Fatal(err)
	}
	settle(clock)
	if err := e.SaveDocument(ctx); err != nil {
		t.Fatal(err)
	}
	docID := e.History().Meta().ID
	if e.Metrics().SyncStatus != store.SyncSynced {
		t.Errorf("sync = %v after save, want synced", e.Metrics().SyncStatus)
	}
	if e.Metrics().Dirty {
		t.Error("Dirty = true after save")
	}

	// A second session loads the same document.
	e2 := New("Other", st, nil, nil, timeutil.NewFakeClock(time.Unix(0, 0)), nil, DefaultConfig())
	defer e2.Close()
	if err := e2.LoadDocument(ctx, docID); err != nil {
		t.Fatal(err)
	}
	if got := len(e2.Scene().Content()); got != 1 {
		t.Errorf("loaded scene has %d objects, want 1", got)
	}
	if e2.History().Meta().ID != docID {
		t.Errorf("history meta id = %q, want %q", e2.History().Meta().ID, docID)
	}
}

func TestLoadMissingDocumentLeavesSceneUntouched(t *testing.T) {
	e, clock := newTestEditor(t)
	if _, err := e.AddShape("process", nil); err != nil {
		t.Fatal(err)
	}
	settle(clock)

	if err := e.LoadDocument(context.Background(), "ghost"); err == nil {
		t.Fatal("LoadDocument of missing id succeeded")
	}
	if got := len(e.Scene().Content()); got != 1 {
		t.Errorf("scene has %d objects after failed load, want 1", got)
	}
	if e.Metrics().SyncStatus != store.SyncError {
		t.Errorf("sync = %v after failed load, want error", e.Metrics().SyncStatus)
	}
}

func TestCloneBringsLabelsAlong(t *testing.T) {
	e, _ := newTestEditor(t)
	at := geo.Pt(100, 100)
	shape, err := e.AddShape("process", &at)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddLabel(shape.ID, "Step 1", 14); err != nil {
		t.Fatal(err)
	}

	dup, err := e.Clone(shape.ID)
	if err != nil {
		t.Fatal(err)
	}
	if dup.Left != shape.Left+20 || dup.Top != shape.Top+20 {
		t.Errorf("clone at (%v, %v), want offset (120, 120)", dup.Left, dup.Top)
	}

	labels := 0
	for _, o := range e.Scene().Objects() {
		if o.Kind == scene.KindText && o.ParentID == dup.ID {
			labels++
		}
	}
	if labels != 1 {
		t.Errorf("clone has %d labels, want 1", labels)
	}
}

func TestVersionRestoreScenario(t *testing.T) {
	e, clock := newTestEditor(t)
	at := geo.Pt(40, 40)
	shape, err := e.AddShape("process", &at)
	if err != nil {
		t.Fatal(err)
	}
	settle(clock)

	v1 := e.CreateVersion("v1")
	if err := e.Move(shape.ID, 200, 0); err != nil {
		t.Fatal(err)
	}
	settle(clock)

	if err := e.RestoreVersion(v1.ID); err != nil {
		t.Fatal(err)
	}
	restored, ok := e.Scene().Get(shape.ID)
	if !ok {
		t.Fatal("shape missing after restore")
	}
	if restored.Left != 40 {
		t.Errorf("shape left = %v after restore, want 40", restored.Left)
	}
}

func TestMetricsEventFollowsMutations(t *testing.T) {
	e, _ := newTestEditor(t)

	var got []Metrics
	sub := e.Subscribe(func(ev Event) { got = append(got, ev.Metrics) }, EventMetricsUpdated)
	defer sub.Unsubscribe()

	if _, err := e.AddShape("process", nil); err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("no metrics event after AddShape")
	}
	last := got[len(got)-1]
	if last.ObjectCount != 1 {
		t.Errorf("ObjectCount = %d, want 1", last.ObjectCount)
	}
	if !e.Metrics().Dirty {
		t.Error("Dirty = false after a mutation")
	}
}

func TestSurfaceGrowsWithInsertions(t *testing.T) {
	e, _ := newTestEditor(t)

	at := geo.Pt(700, 500)
	if _, err := e.AddShape("process", &at); err != nil {
		t.Fatal(err)
	}
	size := e.Surface().Size()
	if size.Width <= 800 || size.Height <= 600 {
		t.Errorf("surface = %v after edge insertion, want growth beyond 800x600", size)
	}
}

func TestDeleteCascadesToConnectors(t *testing.T) {
	e, _ := newTestEditor(t)
	a := geo.Pt(0, 0)
	b := geo.Pt(400, 0)
	first, _ := e.AddShape("process", &a)
	second, _ := e.AddShape("process", &b)
	if c := e.Connect(first.ID, second.ID); c == nil {
		t.Fatal("Connect failed")
	}

	if err := e.Delete(second.ID); err != nil {
		t.Fatal(err)
	}
	if got := len(e.Scene().Connectors()); got != 0 {
		t.Errorf("scene has %d connectors after endpoint delete, want 0", got)
	}
}

func TestExportDOT(t *testing.T) {
	e, _ := newTestEditor(t)
	a := geo.Pt(0, 0)
	b := geo.Pt(400, 0)
	first, _ := e.AddShape("process", &a)
	second, _ := e.AddShape("decision", &b)
	e.Connect(first.ID, second.ID)

	dot := e.ExportDOT(export.Options{})
	if !strings.Contains(dot, "digraph") {
		t.Errorf("ExportDOT output missing digraph header: %q", dot)
	}
	if !strings.Contains(dot, "->") {
		t.Errorf("ExportDOT output missing edge: %q", dot)
	}
}
