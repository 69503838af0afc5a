package export

import (
	"strings"
	"testing"
	"time"

	"github.com/easelkit/easel/pkg/connector"
	"github.com/easelkit/easel/pkg/scene"
)

func exportDoc(t *testing.T) *scene.Document {
	t.Helper()
	sc := scene.New()
	f := scene.NewFactory()
	r := connector.NewRouter(sc, f)
	defer r.Close()

	for _, o := range []*scene.Object{
		{ID: "start", Kind: scene.KindShape, Shape: scene.ShapeEllipse,
			Left: 40, Top: 40, Width: 120, Height: 60, Text: "Start"},
		{ID: "check", Kind: scene.KindShape, Shape: scene.ShapeDiamond,
			Left: 240, Top: 40, Width: 120, Height: 100},
	} {
		if err := sc.Add(o); err != nil {
			t.Fatal(err)
		}
	}
	if c := r.Connect("start", "check", true); c == nil {
		t.Fatal("Connect failed")
	}
	return sc.Export("doc-1", "Flow", 1, time.Unix(0, 0), time.Unix(0, 0))
}

func TestToDOTEmitsNodesAndEdges(t *testing.T) {
	dot := ToDOT(exportDoc(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`"start" [label="Start", shape=ellipse`,
		`shape=diamond`,
		`"start" -> "check";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"check" ->`) {
		t.Errorf("DOT has an edge the document does not:\n%s", dot)
	}
}

func TestToDOTConnectorsAreNotNodes(t *testing.T) {
	dot := ToDOT(exportDoc(t), Options{})
	// Exactly one edge line and no connector node declaration.
	if got := strings.Count(dot, "->"); got != 1 {
		t.Errorf("DOT has %d edges, want 1:\n%s", got, dot)
	}
	// Two node declarations plus the default node style line.
	if got := strings.Count(dot, "];"); got != 3 {
		t.Errorf("DOT has %d bracketed declarations, want 3:\n%s", got, dot)
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	dot := ToDOT(exportDoc(t), Options{Detailed: true, RankDir: "LR"})
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Errorf("DOT missing rankdir override:\n%s", dot)
	}
	if !strings.Contains(dot, "@ (40,40)") {
		t.Errorf("detailed label missing geometry:\n%s", dot)
	}
}
