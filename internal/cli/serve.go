package cli

import (
	"github.com/spf13/cobra"

	"github.com/easelkit/easel/internal/api"
)

// defaultServeAddr is the default listen address for the document service.
const defaultServeAddr = ":8844"

// serveCommand creates the "serve" command running the HTTP document service.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP document service",
		Long: `Run the HTTP document service.

The service exposes the selected store over HTTP (GET/PUT/DELETE
/documents/{id}, GET /documents) and is the backend for the http(s)://
store spec used by other easel commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			return api.NewServer(st, c.Logger).Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	return cmd
}
