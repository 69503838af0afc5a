package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/easelkit/easel/pkg/scene"
)

// Raster renders documents with fogleman/gg. It is the engine's built-in
// primitive layer: shapes, text, connectors with arrowheads, and placeholder
// boxes for images (image bytes live behind the host's asset pipeline).
type Raster struct {
	font *truetype.Font
}

// NewRaster creates a raster renderer with the embedded Go Regular font.
func NewRaster() (*Raster, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Raster{font: f}, nil
}

// Render draws the document onto a white surface of the given size.
// Objects draw in record order, which is the scene's z-order.
func (r *Raster) Render(doc *scene.Document, surfaceW, surfaceH, scale float64) (image.Image, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if surfaceW <= 0 || surfaceH <= 0 {
		surfaceW, surfaceH = 800, 600
	}
	if scale <= 0 {
		scale = 1
	}

	dc := gg.NewContext(int(math.Ceil(surfaceW*scale)), int(math.Ceil(surfaceH*scale)))
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.Scale(scale, scale)

	// Connectors first so shapes sit on top of the line ends.
	for _, rec := range doc.Objects {
		if rec.Kind == "connector" {
			r.drawConnector(dc, &rec.Object)
		}
	}
	for i := range doc.Objects {
		rec := &doc.Objects[i]
		switch rec.Kind {
		case "shape":
			r.drawShape(dc, rec)
		case "text":
			r.drawText(dc, &rec.Object)
		case "image":
			r.drawImagePlaceholder(dc, &rec.Object)
		case "connector", "group":
			// connectors drawn above; groups have no pixels of their own
		}
	}
	return dc.Image(), nil
}

// EncodePNG renders the document and writes it as PNG to w.
func (r *Raster) EncodePNG(w io.Writer, doc *scene.Document, surfaceW, surfaceH, scale float64) error {
	img, err := r.Render(doc, surfaceW, surfaceH, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (r *Raster) drawShape(dc *gg.Context, rec *scene.Record) {
	o := &rec.Object
	box := o.BoundingBox()
	dc.Push()
	defer dc.Pop()

	if o.Rotation != 0 {
		c := box.Center()
		dc.RotateAbout(gg.Radians(o.Rotation), c.X, c.Y)
	}

	switch rec.Shape {
	case "ellipse":
		dc.DrawEllipse(box.Center().X, box.Center().Y, box.Width/2, box.Height/2)
	case "circle":
		dc.DrawCircle(box.Center().X, box.Center().Y, box.Width/2)
	case "diamond":
		c := box.Center()
		dc.MoveTo(c.X, box.Top)
		dc.LineTo(box.Right(), c.Y)
		dc.LineTo(c.X, box.Bottom())
		dc.LineTo(box.Left, c.Y)
		dc.ClosePath()
	default:
		dc.DrawRectangle(box.Left, box.Top, box.Width, box.Height)
	}

	if o.Fill != "" {
		dc.SetHexColor(o.Fill)
		dc.FillPreserve()
	}
	stroke := o.Stroke
	if stroke == "" {
		stroke = "#1a202c"
	}
	dc.SetHexColor(stroke)
	dc.SetLineWidth(orDefault(o.StrokeWidth, 1))
	dc.Stroke()

	if o.Glyph != "" {
		r.setFace(dc, 18)
		dc.SetHexColor(stroke)
		c := box.Center()
		dc.DrawStringAnchored(o.Glyph, c.X, c.Y, 0.5, 0.5)
	}
}

func (r *Raster) drawText(dc *gg.Context, o *scene.Object) {
	size := orDefault(o.FontSize, 16)
	r.setFace(dc, size)
	fill := o.Fill
	if fill == "" {
		fill = "#1a202c"
	}
	dc.SetHexColor(fill)
	dc.DrawStringAnchored(o.Text, o.Left, o.Top+size/2, 0, 0.5)
}

func (r *Raster) drawImagePlaceholder(dc *gg.Context, o *scene.Object) {
	box := o.BoundingBox()
	dc.SetHexColor("#edf2f7")
	dc.DrawRectangle(box.Left, box.Top, box.Width, box.Height)
	dc.FillPreserve()
	dc.SetHexColor("#a0aec0")
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.DrawLine(box.Left, box.Top, box.Right(), box.Bottom())
	dc.DrawLine(box.Right(), box.Top, box.Left, box.Bottom())
	dc.Stroke()
}

func (r *Raster) drawConnector(dc *gg.Context, o *scene.Object) {
	stroke := o.Stroke
	if stroke == "" {
		stroke = "#4a5568"
	}
	dc.SetHexColor(stroke)
	dc.SetLineWidth(orDefault(o.StrokeWidth, 2))
	dc.DrawLine(o.Start.X, o.Start.Y, o.End.X, o.End.Y)
	dc.Stroke()

	if o.Arrow {
		r.drawArrowhead(dc, o)
	}
}

// drawArrowhead fills a triangle at the connector's arrow position, pointing
// along the line direction.
func (r *Raster) drawArrowhead(dc *gg.Context, o *scene.Object) {
	const size = 9.0
	angle := o.ArrowAngle * math.Pi / 180
	tipX, tipY := o.ArrowAt.X, o.ArrowAt.Y
	dx, dy := math.Cos(angle), math.Sin(angle)

	baseX1 := tipX - size*dx + size*0.5*dy
	baseY1 := tipY - size*dy - size*0.5*dx
	baseX2 := tipX - size*dx - size*0.5*dy
	baseY2 := tipY - size*dy + size*0.5*dx

	dc.MoveTo(tipX, tipY)
	dc.LineTo(baseX1, baseY1)
	dc.LineTo(baseX2, baseY2)
	dc.ClosePath()
	dc.Fill()
}

func (r *Raster) setFace(dc *gg.Context, size float64) {
	face := truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

var _ Renderer = (*Raster)(nil)
