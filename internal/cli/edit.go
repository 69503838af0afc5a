package cli

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/easelkit/easel/pkg/editor"
	"github.com/easelkit/easel/pkg/render"
)

// editCommand creates the "edit" command opening the interactive canvas.
func (c *CLI) editCommand() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Open a document in the interactive terminal canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			// The TUI owns the terminal; session logs go to a file or
			// nowhere at all.
			logW := io.Writer(io.Discard)
			if logPath != "" {
				f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logW = f
			}
			logger := newLogger(logW, c.Logger.GetLevel())

			renderer, err := render.NewRaster()
			if err != nil {
				return err
			}

			ed := editor.New("", st, renderer, nil, nil, logger, c.editorConfig())
			defer ed.Close()

			if err := ed.LoadDocument(ctx, args[0]); err != nil {
				return err
			}
			if err := ed.StartAutosave(); err != nil {
				return err
			}
			defer ed.StopAutosave()

			model := NewCanvasModel(ed)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return err
			}

			// Persist anything still unsaved before the session closes.
			if ed.Metrics().Dirty {
				return ed.SaveDocument(ctx)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "write session logs to this file")
	return cmd
}
