package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
store = "memory"

[history]
max_entries = 10
max_versions = 3
capture_debounce_ms = 250
autosave = "@every 10s"

[placement]
spacing = 80
grid_snap = true
grid_size = 10

[connector]
magnet_radius = 60
snap_radius = 30

[viewport]
min_zoom = 0.25
max_zoom = 4
margin = 50

[surface]
growth_margin = 150
edge_margin = 30
growth_factor = 1.5
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	c := &CLI{cfg: cfg}
	ec := c.editorConfig()

	if cfg.Store != "memory" {
		t.Errorf("Store = %q, want memory", cfg.Store)
	}
	if ec.History.MaxEntries != 10 {
		t.Errorf("History.MaxEntries = %d, want 10", ec.History.MaxEntries)
	}
	if ec.History.MaxVersions != 3 {
		t.Errorf("History.MaxVersions = %d, want 3", ec.History.MaxVersions)
	}
	if ec.History.CaptureDebounce != 250*time.Millisecond {
		t.Errorf("History.CaptureDebounce = %v, want 250ms", ec.History.CaptureDebounce)
	}
	if ec.History.AutosaveSpec != "@every 10s" {
		t.Errorf("History.AutosaveSpec = %q, want @every 10s", ec.History.AutosaveSpec)
	}
	if ec.Placement.Spacing != 80 {
		t.Errorf("Placement.Spacing = %v, want 80", ec.Placement.Spacing)
	}
	if !ec.Placement.GridSnap || ec.Placement.GridSize != 10 {
		t.Errorf("Placement grid = (%v, %v), want (true, 10)", ec.Placement.GridSnap, ec.Placement.GridSize)
	}
	if ec.Radii.Magnet != 60 || ec.Radii.Snap != 30 {
		t.Errorf("Radii = (%v, %v), want (60, 30)", ec.Radii.Magnet, ec.Radii.Snap)
	}
	if ec.Viewport.MinZoom != 0.25 || ec.Viewport.MaxZoom != 4 {
		t.Errorf("Viewport zoom = (%v, %v), want (0.25, 4)", ec.Viewport.MinZoom, ec.Viewport.MaxZoom)
	}
	if ec.Viewport.Margin != 50 {
		t.Errorf("Viewport.Margin = %v, want 50", ec.Viewport.Margin)
	}
	if ec.Growth.Margin != 150 || ec.Growth.EdgeMargin != 30 || ec.Growth.GrowthFactor != 1.5 {
		t.Errorf("Growth = %+v, want margin 150, edge 30, factor 1.5", ec.Growth)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[history]
max_entries = 7
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	c := &CLI{cfg: cfg}
	ec := c.editorConfig()

	if ec.History.MaxEntries != 7 {
		t.Errorf("History.MaxEntries = %d, want 7", ec.History.MaxEntries)
	}
	if ec.History.MaxVersions != 20 {
		t.Errorf("History.MaxVersions = %d, want default 20", ec.History.MaxVersions)
	}
	if ec.Radii.Magnet != 40 || ec.Radii.Snap != 25 {
		t.Errorf("Radii = (%v, %v), want defaults (40, 25)", ec.Radii.Magnet, ec.Radii.Snap)
	}
}

func TestLoadConfigMissingExplicitPathFails(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("loadConfig of missing explicit path succeeded")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "store = [broken")
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig of malformed toml succeeded")
	}
}
