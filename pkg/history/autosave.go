package history

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// autosaveTimer wraps the cron scheduler driving periodic autosave.
type autosaveTimer struct {
	cron *cron.Cron
}

// StartAutosave begins the periodic autosave timer using the configured
// cron spec. Starting twice is a no-op.
func (m *Manager) StartAutosave() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.autosave != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(m.cfg.AutosaveSpec, m.Autosave); err != nil {
		return fmt.Errorf("autosave schedule %q: %w", m.cfg.AutosaveSpec, err)
	}
	c.Start()
	m.autosave = &autosaveTimer{cron: c}
	return nil
}

// StopAutosave stops the timer. A tick already in flight completes.
func (m *Manager) StopAutosave() {
	m.mu.Lock()
	t := m.autosave
	m.autosave = nil
	m.mu.Unlock()
	if t != nil {
		t.cron.Stop()
	}
}

// Autosave runs one autosave tick: when unsaved changes exist, a version
// named by timestamp is created with the AutoSave flag set. Failures are
// logged and the dirty flag stays set, so the next tick retries.
func (m *Manager) Autosave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("autosave failed", "err", r)
		}
	}()
	name := "Autosave " + m.clock.Now().Format(time.TimeOnly)
	if m.pending {
		m.deb.Cancel()
		m.captureLocked(m.pendingLabel)
	}
	m.createVersionLocked(name, true)
	m.dirty = false
	m.logger.Debug("autosave version created", "name", name)
}
