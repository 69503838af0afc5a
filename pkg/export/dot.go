// Package export converts documents into graph interchange formats. The
// structural view drops geometry: content objects become graph nodes,
// connectors become directed edges, and Graphviz does the layout.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/easelkit/easel/pkg/scene"
)

// Options configures DOT generation.
type Options struct {
	// RankDir is the graphviz layout direction, "TB" when empty.
	RankDir string
	// Detailed includes object kind and geometry in node labels.
	Detailed bool
}

// ToDOT converts a document to Graphviz DOT. Every non-connector record
// becomes a node labeled by its text or glyph; connectors become directed
// edges. The result renders with [RenderSVG] or [RenderPNG].
func ToDOT(doc *scene.Document, opts Options) string {
	if opts.RankDir == "" {
		opts.RankDir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, rec := range doc.Objects {
		if rec.Kind == scene.KindConnector.String() {
			continue
		}
		attrs := nodeAttrs(rec, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", rec.Object.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, rec := range doc.Objects {
		if rec.Kind != scene.KindConnector.String() {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", rec.Object.StartID, rec.Object.EndID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(rec scene.Record, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(rec, detailed)),
		fmt.Sprintf("shape=%s", dotShape(rec)),
	}
	if rec.Object.Fill != "" && rec.Object.Fill != "white" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", rec.Object.Fill))
	}
	return attrs
}

func nodeLabel(rec scene.Record, detailed bool) string {
	label := rec.Object.Text
	if label == "" {
		label = rec.Object.Glyph
	}
	if label == "" {
		label = rec.Object.ID
	}
	if !detailed {
		return label
	}
	box := rec.Object.BoundingBox()
	return fmt.Sprintf("%s\n%s @ (%.0f,%.0f)", label, rec.Kind, box.Left, box.Top)
}

// dotShape maps canvas shapes onto the closest graphviz node shape.
func dotShape(rec scene.Record) string {
	switch rec.Shape {
	case scene.ShapeEllipse.String():
		return "ellipse"
	case scene.ShapeCircle.String():
		return "circle"
	case scene.ShapeDiamond.String():
		return "diamond"
	default:
		return "box"
	}
}

// RenderSVG lays out a DOT graph and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG lays out a DOT graph and renders it to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
