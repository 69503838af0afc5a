package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/export"
	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/render"
	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/store"
)

const (
	formatPNG = "png"
	formatSVG = "svg"
	formatDOT = "dot"

	// defaultRenderScale is the raster supersampling factor.
	defaultRenderScale = 1.0

	// watchQuiet is the debounce window after a file change before
	// re-rendering. Editors often write a file in several bursts.
	watchQuiet = 200 * time.Millisecond
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string  // output file path
	format string  // output format: "png", "svg", "dot"
	scale  float64 // raster scale factor (png only)
	watch  bool    // re-render on file change (file store only)
}

// renderCommand creates the "render" command for exporting a document.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatPNG, scale: defaultRenderScale}

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Export a document to PNG, SVG, or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRenderFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <id>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: png (default), svg, dot")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor (png)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the document changes (file store only)")

	return cmd
}

// validateRenderFormat checks that the format is png, svg, or dot.
func validateRenderFormat(f string) error {
	switch f {
	case formatPNG, formatSVG, formatDOT:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be png, svg, or dot)", f)
}

// runRender loads the document, renders it once, and optionally watches the
// backing file for changes.
func (c *CLI) runRender(ctx context.Context, id string, opts *renderOpts) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	outputPath := opts.output
	if outputPath == "" {
		outputPath = id + "." + opts.format
	}

	if err := c.renderOnce(ctx, st, id, outputPath, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	fileStore, ok := st.(*store.FileStore)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "--watch requires the file store")
	}
	return c.watchAndRender(ctx, st, fileStore.DocumentPath(id), id, outputPath, opts)
}

// renderOnce loads and renders the document to outputPath.
func (c *CLI) renderOnce(ctx context.Context, st store.Store, id, outputPath string, opts *renderOpts) error {
	p := newProgress(c.Logger)

	doc, err := st.Load(ctx, id)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded %s: %d objects", id, len(doc.Objects))

	data, err := renderDocument(ctx, doc, opts.format, opts.scale)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return err
	}

	p.done(fmt.Sprintf("Rendered %s", id))
	printFile(outputPath)
	return nil
}

// renderDocument dispatches to the renderer for the requested format.
func renderDocument(ctx context.Context, doc *scene.Document, format string, scale float64) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(export.ToDOT(doc, export.Options{})), nil
	case formatSVG:
		return export.RenderSVG(ctx, export.ToDOT(doc, export.Options{}))
	case formatPNG:
		r, err := render.NewRaster()
		if err != nil {
			return nil, err
		}
		size := documentExtent(doc)
		var buf bytes.Buffer
		if err := r.EncodePNG(&buf, doc, size.Width, size.Height, scale); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
}

// documentExtent derives a raster surface size from the document's content,
// with the standard minimum canvas and growth margin.
func documentExtent(doc *scene.Document) geo.Size {
	size := geo.Size{Width: 800, Height: 600}
	sc := scene.New()
	if err := sc.Load(doc); err != nil {
		return size
	}
	bounds := sc.ContentBounds()
	if bounds.IsEmpty() {
		return size
	}
	return size.Max(geo.Size{Width: bounds.Right() + 100, Height: bounds.Bottom() + 100})
}

// watchAndRender re-renders the document whenever its backing file changes,
// until ctx is cancelled. Change bursts are debounced with a quiet window.
func (c *CLI) watchAndRender(ctx context.Context, st store.Store, docPath, id, outputPath string, opts *renderOpts) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: saves replace the file and some
	// editors break the inode watch on rename.
	if err := watcher.Add(filepath.Dir(docPath)); err != nil {
		return err
	}
	c.Logger.Infof("Watching %s (ctrl-c to stop)", docPath)

	quiet := time.NewTimer(watchQuiet)
	if !quiet.Stop() {
		<-quiet.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-watcher.Errors:
			c.Logger.Error("Watcher error", "error", err)
		case event := <-watcher.Events:
			if event.Name != docPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			quiet.Reset(watchQuiet)
		case <-quiet.C:
			if err := c.renderOnce(ctx, st, id, outputPath, opts); err != nil {
				c.Logger.Error("Render failed", "error", err)
			}
		}
	}
}
