// Package history records full-scene snapshots for undo/redo and keeps a
// separate list of named versions with periodic autosave. Capture is
// debounced: a burst of mutations collapses into one entry once the scene
// goes quiet.
package history

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/easelkit/easel/pkg/scene"
	"github.com/easelkit/easel/pkg/timeutil"
)

// Thumbnailer renders a small preview for a snapshot. Implementations
// return "" on failure; a missing thumbnail never blocks capture.
type Thumbnailer func(doc *scene.Document) string

// Entry is one undo/redo state: a full serialized scene plus bookkeeping.
type Entry struct {
	ID        string
	Timestamp time.Time
	Label     string
	Document  *scene.Document
	Thumbnail string
}

// Config holds the history tunables.
type Config struct {
	MaxEntries      int           // undo stack depth
	MaxVersions     int           // retained versions
	CaptureDebounce time.Duration // quiet period before capture
	AutosaveSpec    string        // cron spec for the autosave timer
}

// DefaultConfig returns the standard history tunables.
func DefaultConfig() Config {
	return Config{
		MaxEntries:      50,
		MaxVersions:     20,
		CaptureDebounce: 500 * time.Millisecond,
		AutosaveSpec:    "@every 30s",
	}
}

// Meta identifies the document the manager is tracking. The revision
// counter increments on every capture.
type Meta struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Manager owns the undo/redo stack and version list for one scene. It
// subscribes to the scene bus on construction and captures after every
// debounced mutation burst. All public methods are safe for concurrent use
// with the debounce and autosave timers.
type Manager struct {
	mu sync.Mutex

	cfg    Config
	scene  *scene.Scene
	clock  timeutil.Clock
	deb    *timeutil.Debouncer
	thumb  Thumbnailer
	logger *log.Logger
	sub    *scene.Subscription

	meta     Meta
	revision int

	entries []*Entry
	cursor  int // index of the current state in entries

	pending      bool // mutations seen since the last capture
	pendingLabel string
	dirty        bool // mutations seen since the last autosave or save
	restoring    bool

	versions []*Version
	autosave *autosaveTimer
}

// NewManager attaches a history manager to the scene and records the
// baseline entry. thumb and logger may be nil.
func NewManager(sc *scene.Scene, clock timeutil.Clock, meta Meta, cfg Config, thumb Thumbnailer, logger *log.Logger) *Manager {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	if cfg.MaxVersions <= 0 {
		cfg.MaxVersions = DefaultConfig().MaxVersions
	}
	if cfg.CaptureDebounce <= 0 {
		cfg.CaptureDebounce = DefaultConfig().CaptureDebounce
	}
	if cfg.AutosaveSpec == "" {
		cfg.AutosaveSpec = DefaultConfig().AutosaveSpec
	}
	if clock == nil {
		clock = timeutil.NewSystemClock()
	}
	if logger == nil {
		logger = log.Default()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = clock.Now()
	}

	m := &Manager{
		cfg:    cfg,
		scene:  sc,
		clock:  clock,
		deb:    timeutil.NewDebouncer(clock, cfg.CaptureDebounce),
		thumb:  thumb,
		logger: logger,
		meta:   meta,
		cursor: -1,
	}
	m.sub = sc.Bus().Subscribe(m.onEvent,
		scene.EventAdded, scene.EventRemoved, scene.EventMoved,
		scene.EventScaled, scene.EventRotated, scene.EventModified,
		scene.EventCleared)

	m.mu.Lock()
	m.captureLocked("Initial State")
	m.mu.Unlock()
	return m
}

// Close detaches the manager from the scene and stops its timers.
func (m *Manager) Close() {
	m.StopAutosave()
	m.deb.Cancel()
	if m.sub != nil {
		m.sub.Unsubscribe()
		m.sub = nil
	}
}

// Reset discards all entries and versions and re-baselines on the scene's
// current state, optionally adopting a new document identity. Used when the
// editor switches documents.
func (m *Manager) Reset(meta Meta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deb.Cancel()
	m.entries = nil
	m.versions = nil
	m.cursor = -1
	m.revision = 0
	m.pending = false
	m.pendingLabel = ""
	m.dirty = false
	if meta.ID != "" {
		if meta.CreatedAt.IsZero() {
			meta.CreatedAt = m.clock.Now()
		}
		m.meta = meta
	}
	m.captureLocked("Initial State")
}

// Meta returns the tracked document identity.
func (m *Manager) Meta() Meta {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta
}

// SetMeta renames the tracked document.
func (m *Manager) SetMeta(meta Meta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = m.meta.CreatedAt
	}
	m.meta = meta
}

// Revision returns the capture counter.
func (m *Manager) Revision() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Dirty reports whether mutations occurred since the last autosave or
// explicit MarkClean.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty
}

// MarkClean clears the dirty flag, typically after a successful save.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = false
}

// Pending reports whether a mutation burst is waiting for its debounced
// capture.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Entries returns a copy of the undo stack, oldest first.
func (m *Manager) Entries() []*Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Cursor returns the index of the current state within Entries.
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// CanUndo reports whether an earlier state exists.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending || m.cursor > 0
}

// CanRedo reports whether a later state exists.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.pending && m.cursor < len(m.entries)-1
}

// =============================================================================
// Capture
// =============================================================================

// onEvent marks the scene dirty and schedules the debounced capture.
// Decorations and replays of our own restores are invisible to history.
func (m *Manager) onEvent(ev scene.Event) {
	if ev.Object != nil && ev.Object.Decoration() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.restoring {
		return
	}
	m.pending = true
	m.dirty = true
	m.pendingLabel = labelFor(ev.Kind)
	m.deb.Trigger(m.captureFromTimer)
}

// Capture flushes any pending mutation burst into an entry immediately.
func (m *Manager) Capture(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deb.Cancel()
	m.captureLocked(label)
}

func (m *Manager) captureFromTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return // flushed by an explicit capture before the timer fired
	}
	m.captureLocked(m.pendingLabel)
}

// captureLocked snapshots the scene, truncates any redo branch, appends,
// and trims the stack front past the retention cap. Caller holds mu.
func (m *Manager) captureLocked(label string) {
	m.revision++
	doc := m.snapshotLocked()

	e := &Entry{
		ID:        uuid.NewString(),
		Timestamp: m.clock.Now(),
		Label:     label,
		Document:  doc,
	}
	if m.thumb != nil {
		e.Thumbnail = m.thumb(doc)
	}

	// A mutation after undo discards the previously-redoable future.
	m.entries = append(m.entries[:m.cursor+1], e)
	if over := len(m.entries) - m.cfg.MaxEntries; over > 0 {
		m.entries = m.entries[over:]
	}
	m.cursor = len(m.entries) - 1
	m.pending = false
	m.pendingLabel = ""
}

// snapshotLocked exports the scene under the tracked identity.
func (m *Manager) snapshotLocked() *scene.Document {
	return m.scene.Export(m.meta.ID, m.meta.Name, m.revision, m.meta.CreatedAt, m.clock.Now())
}

// =============================================================================
// Undo / redo
// =============================================================================

// Undo moves one entry back and restores it, reporting whether a step was
// taken. A pending burst is captured first so no mutation is lost.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		m.deb.Cancel()
		m.captureLocked(m.pendingLabel)
	}
	if m.cursor <= 0 {
		return false
	}
	m.cursor--
	return m.restoreLocked(m.entries[m.cursor].Document)
}

// Redo moves one entry forward and restores it.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending || m.cursor >= len(m.entries)-1 {
		return false
	}
	m.cursor++
	return m.restoreLocked(m.entries[m.cursor].Document)
}

// restoreLocked replays a snapshot into the scene with capture suppressed.
// Caller holds mu.
func (m *Manager) restoreLocked(doc *scene.Document) bool {
	m.restoring = true
	err := m.scene.Load(doc)
	m.restoring = false
	if err != nil {
		m.logger.Error("history restore failed", "err", err)
		return false
	}
	m.pending = false
	m.dirty = true
	return true
}

func labelFor(k scene.EventKind) string {
	switch k {
	case scene.EventAdded:
		return "Object Added"
	case scene.EventRemoved:
		return "Object Removed"
	case scene.EventMoved:
		return "Object Moved"
	case scene.EventScaled:
		return "Object Scaled"
	case scene.EventRotated:
		return "Object Rotated"
	case scene.EventModified:
		return "Object Modified"
	case scene.EventCleared:
		return "Canvas Cleared"
	}
	return "Scene Changed"
}
