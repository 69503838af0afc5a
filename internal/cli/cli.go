// Package cli implements the easel command-line interface.
//
// This package provides commands for creating and editing canvas documents,
// exporting them to image formats, managing versions, and serving documents
// over HTTP. The CLI is built using cobra and supports verbose logging via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - new: Create and save an empty document
//   - list: List documents in the store
//   - edit: Open a document in the interactive terminal canvas
//   - render: Export a document to PNG, SVG, or DOT
//   - versions: Manage saved document versions
//   - serve: Run the HTTP document service
//   - delete: Remove a document from the store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Stores
//
// Every command operates against a document store selected by --store (or
// the config file): "file" (default), "memory", "redis://", "mongodb://",
// or "http(s)://" for a remote easel service.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/easelkit/easel/pkg/buildinfo"
	"github.com/easelkit/easel/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "easel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	storeSpec  string
	cfg        Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Easel is a canvas editor for diagram documents",
		Long:         `Easel is a terminal canvas editor for diagram documents: place shapes and text, connect them, undo and redo, keep versions, and export the result as PNG, SVG, or DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.storeSpec, "store", "",
		"document store: file[:dir], memory, redis://, mongodb://, or http(s)://")
	root.PersistentFlags().StringVar(&c.configPath, "config", "",
		"config file (default ~/.config/easel/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore opens the document store selected by --store, falling back to
// the config file and then to the default file store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	spec := c.storeSpec
	if spec == "" {
		spec = c.cfg.Store
	}
	return store.Open(ctx, spec)
}
