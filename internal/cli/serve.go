package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/internal/server"
	"github.com/matzehuels/critpath/pkg/suggest"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve starts the HTTP API:

  POST /api/analyze          upload a task file or post a JSON task array
  GET  /api/analyses/{id}    fetch a stored analysis
  POST /api/suggest          ask for a suggestion on one task
  GET  /healthz, /version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, store, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			if !suggest.Configured(runner.Suggester) {
				c.Logger.Warnf("suggestions disabled: set %s to enable /api/suggest", c.Config.Suggest.APIKeyEnv)
			}

			opts := server.OptionsFromConfig(c.Config)
			if cmd.Flags().Changed("addr") {
				opts.Addr = addr
			}
			return server.New(runner, opts, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :5001)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching; stored results are then unavailable")

	return cmd
}
