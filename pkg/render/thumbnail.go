package render

import (
	"bytes"
	"encoding/base64"

	"github.com/easelkit/easel/pkg/scene"
)

// thumbnailWidth is the pixel width of generated thumbnails.
const thumbnailWidth = 200

// Thumbnail renders a low-resolution preview of the document and returns it
// as a base64 PNG data URL. Any failure degrades to the empty string; a
// missing thumbnail must never block a save or a version capture.
func Thumbnail(r Renderer, doc *scene.Document, surfaceW, surfaceH float64) string {
	if r == nil || doc == nil {
		return ""
	}
	if surfaceW <= 0 || surfaceH <= 0 {
		surfaceW, surfaceH = 800, 600
	}
	scale := thumbnailWidth / surfaceW

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf, doc, surfaceW, surfaceH, scale); err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
