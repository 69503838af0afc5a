// Package render is the engine's boundary to the underlying 2D rendering
// layer. The canvas engine never touches rasterization internals; it hands a
// serialized document to a [Renderer] and receives pixels back.
//
// The default implementation, [Raster], draws with fogleman/gg. Hosts that
// embed the engine in a richer canvas stack supply their own Renderer.
package render

import (
	"image"
	"io"

	"github.com/easelkit/easel/pkg/scene"
)

// Renderer rasterizes a serialized scene document.
type Renderer interface {
	// Render draws the document at the given scale onto a fresh image
	// sized to the backing surface.
	Render(doc *scene.Document, surfaceW, surfaceH, scale float64) (image.Image, error)

	// EncodePNG renders the document and writes it as PNG to w.
	EncodePNG(w io.Writer, doc *scene.Document, surfaceW, surfaceH, scale float64) error
}
