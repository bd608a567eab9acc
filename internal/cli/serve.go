package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/soup/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve [recipe]",
		Short: "Serve the resolution snapshot of a recipe over HTTP",
		Long: `Resolve a recipe and serve the snapshot as a JSON API.

Endpoints:
  GET  /healthz
  GET  /api/snapshot
  GET  /api/graph?format=json|levels|dot|svg
  GET  /api/graphs, /api/graphs/{id}
  GET  /api/packages, /api/packages/{id}
  GET  /api/notifications
  POST /api/reload

With --watch the server resolves again when a manifest of the current
snapshot changes.`,
		Example: `  soup serve ./App --addr :8080 --watch`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			root, err := recipePath(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(server.Config{
				Addr:    cfg.Server.Addr,
				Watch:   cfg.Server.Watch,
				Runner:  runner,
				Options: c.pipelineOptions(cfg, root, false),
				Logger:  loggerFromContext(ctx),
			})
			return srv.Serve(ctx)
		},
	}

	addResolveFlags(cmd)
	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	cmd.Flags().Bool("watch", false, "resolve again when a manifest changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the snapshot cache")

	return cmd
}
