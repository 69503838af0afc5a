// Package editor is the host boundary of the canvas engine. An Editor owns
// one scene together with every collaborator operating on it (viewport,
// placement, growth policy, connector router and gesture, history, store,
// renderer) and exposes the operations a UI calls. All collaborators are
// explicit instances constructed with the session; nothing is ambient.
package editor

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/easelkit/easel/pkg/connector"
	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/export"
	"github.com/easelkit/easel/pkg/geo"
	"github.com/easelkit/easel/pkg/history"
	"github.com/easelkit/easel/pkg/observability"
	"github.com/easelkit/easel/pkg/placement"
	"github.com/easelkit/easel/pkg/render"
	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/store"
	"github.com/easelkit/easel/pkg/surface"
	"github.com/easelkit/easel/pkg/timeutil"
	"github.com/easelkit/easel/pkg/viewport"
)

// Metrics is the status snapshot pushed to hosts after every change.
type Metrics struct {
	ObjectCount    int
	ConnectorCount int
	Zoom           float64
	SurfaceSize    geo.Size
	HistoryEntries int
	CanUndo        bool
	CanRedo        bool
	Dirty          bool
	SyncStatus     store.SyncStatus
}

// Config bundles the tunables of a session. The zero value selects every
// component's defaults.
type Config struct {
	Viewport    viewport.Config
	Growth      surface.Policy
	History     history.Config
	Placement   placement.Options
	Radii       connector.Radii
	CloneOffset float64
}

// DefaultConfig returns the standard session tunables.
func DefaultConfig() Config {
	return Config{
		Viewport:    viewport.DefaultConfig(),
		Growth:      surface.DefaultPolicy(),
		History:     history.DefaultConfig(),
		Placement:   placement.DefaultOptions(),
		Radii:       connector.DefaultRadii(),
		CloneOffset: 20,
	}
}

// Editor is one editing session over one document.
type Editor struct {
	mu sync.Mutex

	cfg    Config
	logger *log.Logger
	clock  timeutil.Clock
	sched  render.FrameScheduler

	scene    *scene.Scene
	factory  *scene.Factory
	surface  *surface.Surface
	viewport *viewport.Viewport
	placer   *placement.Engine
	router   *connector.Router
	gesture  *connector.Gesture
	history  *history.Manager
	store    store.Store
	renderer render.Renderer

	bus      *bus
	sceneSub *scene.Subscription
	sync     store.SyncStatus
}

// New creates a session over a fresh document. st may be nil (no
// persistence), renderer may be nil (no export or thumbnails), sched may be
// nil (no animations), clock and logger may be nil for their defaults.
func New(name string, st store.Store, renderer render.Renderer, sched render.FrameScheduler, clock timeutil.Clock, logger *log.Logger, cfg Config) *Editor {
	if clock == nil {
		clock = timeutil.NewSystemClock()
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}

	sc := scene.New()
	f := scene.NewFactory()
	surf := surface.New(geo.Size{}, geo.Size{})

	e := &Editor{
		cfg:      cfg,
		logger:   logger,
		clock:    clock,
		sched:    sched,
		scene:    sc,
		factory:  f,
		surface:  surf,
		viewport: viewport.New(sc, surf, sched, clock, cfg.Viewport),
		placer:   placement.NewEngine(sc),
		store:    st,
		renderer: renderer,
		bus:      newBus(),
	}
	e.router = connector.NewRouter(sc, f)
	e.gesture = connector.NewGesture(sc, f, e.router, sched, cfg.Radii)

	meta := history.Meta{ID: uuid.NewString(), Name: name, CreatedAt: clock.Now()}
	e.history = history.NewManager(sc, clock, meta, cfg.History, e.thumbnailer(), logger)

	// Metrics follow every scene change. EventLoaded is excluded: loads
	// happen inside history restores, which emit metrics themselves once
	// the restore completes.
	e.sceneSub = sc.Bus().Subscribe(func(scene.Event) { e.emitMetrics() },
		scene.EventAdded, scene.EventRemoved, scene.EventMoved,
		scene.EventScaled, scene.EventRotated, scene.EventModified,
		scene.EventCleared)
	return e
}

// Close releases the session's subscriptions and timers. The store is not
// closed; the caller owns it.
func (e *Editor) Close() {
	e.gesture.Cancel()
	e.history.Close()
	e.router.Close()
	if e.sceneSub != nil {
		e.sceneSub.Unsubscribe()
		e.sceneSub = nil
	}
}

// Component accessors for hosts that need direct access.

func (e *Editor) Scene() *scene.Scene          { return e.scene }
func (e *Editor) Factory() *scene.Factory      { return e.factory }
func (e *Editor) Viewport() *viewport.Viewport { return e.viewport }
func (e *Editor) Surface() *surface.Surface    { return e.surface }
func (e *Editor) History() *history.Manager    { return e.history }
func (e *Editor) Gesture() *connector.Gesture  { return e.gesture }

// Subscribe registers a handler for editor events; no kinds means all.
func (e *Editor) Subscribe(fn Handler, kinds ...EventKind) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bus.subscribe(fn, kinds...)
}

// Metrics returns the current status snapshot.
func (e *Editor) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metricsLocked()
}

func (e *Editor) metricsLocked() Metrics {
	return Metrics{
		ObjectCount:    len(e.scene.Content()),
		ConnectorCount: len(e.scene.Connectors()),
		Zoom:           e.viewport.Zoom(),
		SurfaceSize:    e.surface.Size(),
		HistoryEntries: len(e.history.Entries()),
		CanUndo:        e.history.CanUndo(),
		CanRedo:        e.history.CanRedo(),
		Dirty:          e.history.Dirty(),
		SyncStatus:     e.sync,
	}
}

func (e *Editor) emitMetrics() {
	e.mu.Lock()
	m := e.metricsLocked()
	b := e.bus
	e.mu.Unlock()
	b.emit(Event{Kind: EventMetricsUpdated, Metrics: m})
}

func (e *Editor) setSync(s store.SyncStatus) {
	e.mu.Lock()
	changed := e.sync != s
	e.sync = s
	b := e.bus
	e.mu.Unlock()
	if changed {
		b.emit(Event{Kind: EventSyncStatusChanged, SyncStatus: s})
	}
}

// =============================================================================
// Object operations
// =============================================================================

// AddShape builds a shape from a registered definition and inserts it at
// the given point, or lets the placement engine choose when at is nil.
func (e *Editor) AddShape(name string, at *geo.Point) (*scene.Object, error) {
	def, ok := e.factory.Def(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown shape %q", name)
	}
	size := def.Size
	if def.Shape == scene.ShapeCircle {
		size = geo.Size{Width: 2 * def.Radius, Height: 2 * def.Radius}
	}
	o, err := e.factory.BuildShape(name, e.place(size, at))
	if err != nil {
		return nil, err
	}
	return e.insert("addShape", o)
}

// AddText inserts a standalone text object.
func (e *Editor) AddText(text string, fontSize float64, at *geo.Point) (*scene.Object, error) {
	o := e.factory.BuildText(text, geo.Pt(0, 0), fontSize)
	pos := e.place(geo.Size{Width: o.Width, Height: o.Height}, at)
	o.Left, o.Top = pos.X, pos.Y
	return e.insert("addText", o)
}

// AddLabel binds a text label to an existing object.
func (e *Editor) AddLabel(parentID, text string, fontSize float64) (*scene.Object, error) {
	parent, ok := e.scene.Get(parentID)
	if !ok {
		return nil, errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", parentID)
	}
	return e.insert("addLabel", e.factory.BuildLabel(parent, text, fontSize))
}

// AddImage inserts an image placeholder referencing external image data.
func (e *Editor) AddImage(ref string, size geo.Size, at *geo.Point) (*scene.Object, error) {
	pos := e.place(size, at)
	return e.insert("addImage", e.factory.BuildImage(ref, pos, size))
}

// Clone duplicates an object slightly offset from the original. Cloned
// shapes bring their bound labels along; connectors are not cloneable.
func (e *Editor) Clone(id string) (*scene.Object, error) {
	src, ok := e.scene.Get(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeObjectNotFound, "object %q not in scene", id)
	}
	if src.Kind == scene.KindConnector || src.Decoration() {
		return nil, errors.New(errors.ErrCodeInvalidObject, "cannot clone a %s", src.Kind)
	}

	dup := src.Clone()
	dup.ID = uuid.NewString()
	dup.Left += e.cfg.CloneOffset
	dup.Top += e.cfg.CloneOffset
	out, err := e.insert("clone", dup)
	if err != nil {
		return nil, err
	}

	for _, o := range e.scene.Objects() {
		if o.Kind == scene.KindText && o.ParentID == id {
			l := o.Clone()
			l.ID = uuid.NewString()
			l.ParentID = dup.ID
			l.Left += e.cfg.CloneOffset
			l.Top += e.cfg.CloneOffset
			if err := e.scene.Add(l); err != nil {
				e.logger.Warn("clone label", "err", err)
			}
		}
	}
	return out, nil
}

// Delete removes objects by id. Connectors and decorations attached to
// them cascade.
func (e *Editor) Delete(ids ...string) error {
	observability.Editor().OnOperation(context.Background(), "delete", "")
	for _, id := range ids {
		if err := e.scene.Remove(id); err != nil {
			return err
		}
	}
	e.afterMutation()
	return nil
}

// Move translates an object.
func (e *Editor) Move(id string, dx, dy float64) error {
	if err := e.scene.Move(id, dx, dy); err != nil {
		return err
	}
	e.afterMutation()
	return nil
}

// Connect creates a connector between two objects. Missing endpoints
// silently no-op, mirroring a stale drag release.
func (e *Editor) Connect(startID, endID string) *scene.Object {
	observability.Editor().OnOperation(context.Background(), "connect", startID)
	c := e.router.Connect(startID, endID, true)
	if c != nil {
		e.afterMutation()
	}
	return c
}

// Group collects objects under a new group id.
func (e *Editor) Group(memberIDs ...string) (*scene.Object, error) {
	g, err := e.scene.Group(uuid.NewString(), memberIDs)
	if err != nil {
		return nil, err
	}
	e.afterMutation()
	return g, nil
}

// Ungroup dissolves a group, keeping its members.
func (e *Editor) Ungroup(id string) error {
	if err := e.scene.Ungroup(id); err != nil {
		return err
	}
	e.afterMutation()
	return nil
}

// Layer reordering passthroughs.

func (e *Editor) BringForward(id string) error { return e.scene.BringForward(id) }
func (e *Editor) SendBackward(id string) error { return e.scene.SendBackward(id) }
func (e *Editor) BringToFront(id string) error { return e.scene.BringToFront(id) }
func (e *Editor) SendToBack(id string) error   { return e.scene.SendToBack(id) }

// place resolves an insertion point: explicit when given, engine-chosen
// otherwise.
func (e *Editor) place(size geo.Size, at *geo.Point) geo.Point {
	if at != nil {
		return *at
	}
	res := e.placer.Find(size, e.viewport.VisibleRect(), e.surface.Rect(), e.cfg.Placement)
	return res.Point()
}

// insert adds the object, grows the surface if needed, and keeps the new
// object visible.
func (e *Editor) insert(op string, o *scene.Object) (*scene.Object, error) {
	observability.Editor().OnOperation(context.Background(), op, o.ID)
	if err := e.scene.Add(o); err != nil {
		return nil, err
	}
	e.afterMutation()
	e.viewport.EnsureVisible(o, true)
	return o, nil
}

// afterMutation applies the growth policy. Metrics emission rides on the
// scene subscription, not here.
func (e *Editor) afterMutation() {
	res := e.cfg.Growth.GrowIfNeeded(e.surface, e.scene)
	if res.Resized {
		e.logger.Debug("surface grown", "size", res.NewSize)
	}
}

// =============================================================================
// History
// =============================================================================

// Undo steps the scene one history entry back.
func (e *Editor) Undo() bool {
	ok := e.history.Undo()
	if ok {
		observability.Editor().OnHistoryRestore(context.Background(), "undo", e.history.Cursor())
		e.emitMetrics()
	}
	return ok
}

// Redo steps the scene one history entry forward.
func (e *Editor) Redo() bool {
	ok := e.history.Redo()
	if ok {
		observability.Editor().OnHistoryRestore(context.Background(), "redo", e.history.Cursor())
		e.emitMetrics()
	}
	return ok
}

// CreateVersion snapshots the current state under a name.
func (e *Editor) CreateVersion(name string) *history.Version {
	v := e.history.CreateVersion(name, false)
	e.emitMetrics()
	return v
}

// RestoreVersion replays a stored version into the scene.
func (e *Editor) RestoreVersion(id string) error {
	if err := e.history.RestoreVersion(id); err != nil {
		return err
	}
	e.emitMetrics()
	return nil
}

// DeleteVersion removes a stored version.
func (e *Editor) DeleteVersion(id string) error { return e.history.DeleteVersion(id) }

// Versions lists stored versions, oldest first.
func (e *Editor) Versions() []*history.Version { return e.history.Versions() }

// =============================================================================
// Persistence
// =============================================================================

// SaveDocument persists the current state through the session store. The
// sync status moves to saving, then synced or error; failures propagate
// but never touch the history or version lists.
func (e *Editor) SaveDocument(ctx context.Context) error {
	if e.store == nil {
		return errors.New(errors.ErrCodeUnsupported, "session has no store")
	}
	meta := e.history.Meta()
	doc := e.snapshot()

	e.setSync(store.SyncSaving)
	observability.Store().OnSaveStart(ctx, "session", meta.ID)
	started := e.clock.Now()
	err := e.store.Save(ctx, doc)
	observability.Store().OnSaveComplete(ctx, "session", meta.ID, doc.SizeBytes, e.clock.Now().Sub(started), err)
	if err != nil {
		e.setSync(store.SyncError)
		return err
	}

	e.history.MarkClean()
	e.setSync(store.SyncSynced)
	e.bus.emit(Event{Kind: EventDocumentSaved, DocumentID: meta.ID})
	return nil
}

// LoadDocument replaces the session's scene with a stored document and
// re-baselines history. A failed load leaves the scene untouched.
func (e *Editor) LoadDocument(ctx context.Context, id string) error {
	if e.store == nil {
		return errors.New(errors.ErrCodeUnsupported, "session has no store")
	}
	started := e.clock.Now()
	doc, err := e.store.Load(ctx, id)
	observability.Store().OnLoadComplete(ctx, "session", id, e.clock.Now().Sub(started), err)
	if err != nil {
		e.setSync(store.SyncError)
		return err
	}
	if err := e.scene.Load(doc); err != nil {
		e.logger.Error("document load rejected", "id", id, "err", err)
		e.setSync(store.SyncError)
		return err
	}

	e.history.Reset(history.Meta{ID: doc.ID, Name: doc.Name, CreatedAt: doc.CreatedAt})
	e.afterMutation()
	e.viewport.FitToContent(false)
	e.setSync(store.SyncSynced)
	e.emitMetrics()
	e.bus.emit(Event{Kind: EventDocumentLoaded, DocumentID: doc.ID})
	return nil
}

// NewDocument clears the session into a fresh unsaved document.
func (e *Editor) NewDocument(name string) {
	e.gesture.Cancel()
	e.scene.Clear()
	id := uuid.NewString()
	e.history.Reset(history.Meta{ID: id, Name: name, CreatedAt: e.clock.Now()})
	e.viewport.ResetView(false)
	e.setSync(store.SyncIdle)
	e.bus.emit(Event{Kind: EventDocumentCreated, DocumentID: id})
}

// snapshot exports the scene under the session's document identity.
func (e *Editor) snapshot() *scene.Document {
	meta := e.history.Meta()
	return e.scene.Export(meta.ID, meta.Name, e.history.Revision(), meta.CreatedAt, e.clock.Now())
}

// =============================================================================
// Export
// =============================================================================

// ExportDocument returns the serialized current state.
func (e *Editor) ExportDocument() (*scene.Document, error) {
	return e.snapshot(), nil
}

// ExportPNG rasterizes the current state to w at the given scale.
func (e *Editor) ExportPNG(w io.Writer, scale float64) error {
	if e.renderer == nil {
		return errors.New(errors.ErrCodeUnsupported, "session has no renderer")
	}
	size := e.surface.Size()
	started := e.clock.Now()
	err := e.renderer.EncodePNG(w, e.snapshot(), size.Width, size.Height, scale)
	observability.Editor().OnRenderComplete(context.Background(), "png", e.clock.Now().Sub(started), err)
	return err
}

// ExportDOT returns the current state as a graphviz digraph.
func (e *Editor) ExportDOT(opts export.Options) string {
	return export.ToDOT(e.snapshot(), opts)
}

// thumbnailer adapts the renderer for history capture; a nil renderer
// yields empty thumbnails.
func (e *Editor) thumbnailer() history.Thumbnailer {
	if e.renderer == nil {
		return nil
	}
	return func(doc *scene.Document) string {
		size := e.surface.Size()
		return render.Thumbnail(e.renderer, doc, size.Width, size.Height)
	}
}

// =============================================================================
// Autosave
// =============================================================================

// StartAutosave begins the periodic version timer.
func (e *Editor) StartAutosave() error { return e.history.StartAutosave() }

// StopAutosave halts the periodic version timer.
func (e *Editor) StopAutosave() { e.history.StopAutosave() }
