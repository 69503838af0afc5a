package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/scene"
)

// Version is an independently retained snapshot, created manually or by the
// autosave timer.
type Version struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Document  *scene.Document
	Thumbnail string
	AutoSave  bool
}

// Versions returns a copy of the version list, oldest first.
func (m *Manager) Versions() []*Version {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Version, len(m.versions))
	copy(out, m.versions)
	return out
}

// CreateVersion snapshots the current scene as a named version. Any
// pending mutation burst is captured first so the version reflects the
// latest state.
func (m *Manager) CreateVersion(name string, autoSave bool) *Version {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		m.deb.Cancel()
		m.captureLocked(m.pendingLabel)
	}
	return m.createVersionLocked(name, autoSave)
}

func (m *Manager) createVersionLocked(name string, autoSave bool) *Version {
	doc := m.snapshotLocked()
	v := &Version{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: m.clock.Now(),
		Document:  doc,
		AutoSave:  autoSave,
	}
	if m.thumb != nil {
		v.Thumbnail = m.thumb(doc)
	}
	m.versions = append(m.versions, v)
	m.pruneVersionsLocked()
	return v
}

// pruneVersionsLocked enforces the retention cap, evicting the oldest
// autosave first and falling back to the oldest version of any kind when
// everything left is manual.
func (m *Manager) pruneVersionsLocked() {
	for len(m.versions) > m.cfg.MaxVersions {
		victim := -1
		for i, v := range m.versions {
			if v.AutoSave {
				victim = i
				break
			}
		}
		if victim < 0 {
			victim = 0
		}
		m.versions = append(m.versions[:victim], m.versions[victim+1:]...)
	}
}

// Version looks up a version by id.
func (m *Manager) Version(id string) (*Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versionLocked(id)
}

func (m *Manager) versionLocked(id string) (*Version, error) {
	for _, v := range m.versions {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, errors.New(errors.ErrCodeVersionNotFound, "version %q not found", id)
}

// RestoreVersion replays a version's snapshot into the scene and records
// the restore as a new undo entry, so the restore itself is undoable.
func (m *Manager) RestoreVersion(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.versionLocked(id)
	if err != nil {
		return err
	}
	if !m.restoreLocked(v.Document) {
		return errors.New(errors.ErrCodeInvalidDocument, "version %q could not be restored", id)
	}
	m.captureLocked("Version Restored")
	return nil
}

// DeleteVersion removes a version by id.
func (m *Manager) DeleteVersion(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.versions {
		if v.ID == id {
			m.versions = append(m.versions[:i], m.versions[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.ErrCodeVersionNotFound, "version %q not found", id)
}
