package cli

import (
	"github.com/spf13/cobra"

	"github.com/easelkit/easel/pkg/editor"
	"github.com/easelkit/easel/pkg/errors"
)

// newCommand creates the "new" command for creating an empty document.
func (c *CLI) newCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create and save an empty document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := errors.ValidateDocumentName(name); err != nil {
				return err
			}
			if id != "" {
				if err := errors.ValidateDocumentID(id); err != nil {
					return err
				}
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			ed := editor.New(name, st, nil, nil, nil, c.Logger, c.editorConfig())
			defer ed.Close()

			if id != "" {
				meta := ed.History().Meta()
				meta.ID = id
				ed.History().SetMeta(meta)
			}
			if err := ed.SaveDocument(ctx); err != nil {
				return err
			}

			printSuccess("Created %q", name)
			printKeyValue("id", ed.History().Meta().ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "document id (default: generated)")
	return cmd
}
