package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/easelkit/easel/pkg/store"
)

// listCommand creates the "list" command for listing stored documents.
func (c *CLI) listCommand() *cobra.Command {
	var showVersions bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			infos, err := st.List(ctx)
			if err != nil {
				return err
			}
			if !showVersions {
				infos = filterVersionSnapshots(infos)
			}
			if len(infos) == 0 {
				printInfo("No documents")
				return nil
			}

			fmt.Println(documentTable(infos))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showVersions, "versions", false, "include version snapshots")
	return cmd
}

// filterVersionSnapshots removes version snapshot entries (ids containing
// the version separator) from the listing.
func filterVersionSnapshots(infos []store.Info) []store.Info {
	kept := infos[:0]
	for _, info := range infos {
		if !strings.Contains(info.ID, versionSeparator) {
			kept = append(kept, info)
		}
	}
	return kept
}

// documentTable renders document metadata as a bordered table.
func documentTable(infos []store.Info) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.ID,
			info.Name,
			strconv.Itoa(info.Version),
			formatBytes(info.SizeBytes),
			formatRelativeTime(info.UpdatedAt),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Rev", "Size", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}

// deleteCommand creates the "delete" command for removing a document.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
