package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/store"
)

// versionSeparator joins a document id and a version name into a snapshot
// id. Snapshot ids live in the same store namespace as documents, so a
// version survives editor sessions and travels with any store provider.
const versionSeparator = "@"

// versionID builds the snapshot id for the named version of a document.
func versionID(docID, name string) string {
	return docID + versionSeparator + name
}

// versionsCommand creates the "versions" command group for managing saved
// document versions.
func (c *CLI) versionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Manage saved document versions",
		Long: `Manage saved document versions.

A version is a named snapshot of a document stored alongside it. Versions
created inside an editing session (including autosaves) live with that
session; versions created here are persisted in the store and survive
across sessions.`,
	}

	cmd.AddCommand(c.versionsListCommand())
	cmd.AddCommand(c.versionsCreateCommand())
	cmd.AddCommand(c.versionsRestoreCommand())

	return cmd
}

func (c *CLI) versionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <id>",
		Short: "List saved versions of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			versions, err := listVersions(ctx, st, args[0])
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				printInfo("No saved versions for %s", args[0])
				return nil
			}
			fmt.Println(documentTable(versions))
			return nil
		},
	}
}

func (c *CLI) versionsCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <id> <name>",
		Short: "Save the document's current state as a named version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			docID, name := args[0], args[1]
			if strings.Contains(name, versionSeparator) {
				return errors.New(errors.ErrCodeInvalidName, "version name cannot contain %q", versionSeparator)
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			doc, err := st.Load(ctx, docID)
			if err != nil {
				return err
			}
			doc.ID = versionID(docID, name)
			doc.UpdatedAt = time.Now()
			if err := st.Save(ctx, doc); err != nil {
				return err
			}
			printSuccess("Saved version %q of %s", name, docID)
			return nil
		},
	}
}

func (c *CLI) versionsRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id> <name>",
		Short: "Restore a document to a saved version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			docID, name := args[0], args[1]

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			doc, err := st.Load(ctx, versionID(docID, name))
			if err != nil {
				if errors.Is(err, errors.ErrCodeDocumentNotFound) {
					return errors.New(errors.ErrCodeVersionNotFound, "no version %q of %s", name, docID)
				}
				return err
			}
			doc.ID = docID
			doc.Version++
			doc.UpdatedAt = time.Now()
			if err := st.Save(ctx, doc); err != nil {
				return err
			}
			printSuccess("Restored %s to version %q", docID, name)
			return nil
		},
	}
}

// listVersions returns the version snapshots of docID, newest first.
func listVersions(ctx context.Context, st store.Store, docID string) ([]store.Info, error) {
	infos, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	prefix := docID + versionSeparator
	var versions []store.Info
	for _, info := range infos {
		if strings.HasPrefix(info.ID, prefix) {
			versions = append(versions, info)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].UpdatedAt.After(versions[j].UpdatedAt)
	})
	return versions, nil
}
