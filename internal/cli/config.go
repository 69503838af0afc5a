package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/easelkit/easel/pkg/editor"
)

// =============================================================================
// Config File
// =============================================================================

// Config holds the tunables read from ~/.config/easel/config.toml. Zero
// values fall through to the built-in defaults, so a partial (or absent)
// config file is fine.
type Config struct {
	// Store is the default document store spec used when --store is not given.
	Store string `toml:"store"`

	History struct {
		MaxEntries        int    `toml:"max_entries"`
		MaxVersions       int    `toml:"max_versions"`
		CaptureDebounceMS int    `toml:"capture_debounce_ms"`
		Autosave          string `toml:"autosave"`
	} `toml:"history"`

	Placement struct {
		Spacing  float64 `toml:"spacing"`
		GridSnap bool    `toml:"grid_snap"`
		GridSize float64 `toml:"grid_size"`
	} `toml:"placement"`

	Connector struct {
		MagnetRadius float64 `toml:"magnet_radius"`
		SnapRadius   float64 `toml:"snap_radius"`
	} `toml:"connector"`

	Viewport struct {
		MinZoom float64 `toml:"min_zoom"`
		MaxZoom float64 `toml:"max_zoom"`
		Margin  float64 `toml:"margin"`
	} `toml:"viewport"`

	Surface struct {
		GrowthMargin float64 `toml:"growth_margin"`
		EdgeMargin   float64 `toml:"edge_margin"`
		GrowthFactor float64 `toml:"growth_factor"`
	} `toml:"surface"`
}

// loadConfig reads the config file at path. An empty path selects the
// default location; a missing file at the default location is not an error.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// defaultConfigPath returns the config path using the XDG convention
// (~/.config/easel/config.toml).
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// =============================================================================
// Editor Config
// =============================================================================

// editorConfig builds the session tunables, overlaying non-zero config file
// values on the defaults.
func (c *CLI) editorConfig() editor.Config {
	ec := editor.DefaultConfig()
	cfg := c.cfg

	if cfg.History.MaxEntries > 0 {
		ec.History.MaxEntries = cfg.History.MaxEntries
	}
	if cfg.History.MaxVersions > 0 {
		ec.History.MaxVersions = cfg.History.MaxVersions
	}
	if cfg.History.CaptureDebounceMS > 0 {
		ec.History.CaptureDebounce = time.Duration(cfg.History.CaptureDebounceMS) * time.Millisecond
	}
	if cfg.History.Autosave != "" {
		ec.History.AutosaveSpec = cfg.History.Autosave
	}

	if cfg.Placement.Spacing > 0 {
		ec.Placement.Spacing = cfg.Placement.Spacing
	}
	if cfg.Placement.GridSnap {
		ec.Placement.GridSnap = true
	}
	if cfg.Placement.GridSize > 0 {
		ec.Placement.GridSize = cfg.Placement.GridSize
	}

	if cfg.Connector.MagnetRadius > 0 {
		ec.Radii.Magnet = cfg.Connector.MagnetRadius
	}
	if cfg.Connector.SnapRadius > 0 {
		ec.Radii.Snap = cfg.Connector.SnapRadius
	}

	if cfg.Viewport.MinZoom > 0 {
		ec.Viewport.MinZoom = cfg.Viewport.MinZoom
	}
	if cfg.Viewport.MaxZoom > 0 {
		ec.Viewport.MaxZoom = cfg.Viewport.MaxZoom
	}
	if cfg.Viewport.Margin > 0 {
		ec.Viewport.Margin = cfg.Viewport.Margin
	}

	if cfg.Surface.GrowthMargin > 0 {
		ec.Growth.Margin = cfg.Surface.GrowthMargin
	}
	if cfg.Surface.EdgeMargin > 0 {
		ec.Growth.EdgeMargin = cfg.Surface.EdgeMargin
	}
	if cfg.Surface.GrowthFactor > 1 {
		ec.Growth.GrowthFactor = cfg.Surface.GrowthFactor
	}

	return ec
}
