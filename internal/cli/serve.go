package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flamesplit/pkg/server"
)

type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload service",
		Long: `Serve runs the web front end: an upload form that answers with the split
scene as a file download. The service stops gracefully on interrupt.`,
		Example: `  flamesplit serve
  flamesplit serve --addr 127.0.0.1:9000 --no-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(withLogger(cmd.Context(), c.Logger), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the split cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := c.newHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	srv := server.New(runner, store, logger, server.Config{
		MaxLevel:       cfg.Split.MaxLevel,
		Policy:         cfg.Split.Policy,
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
	})

	logger.Info("starting server",
		"addr", addr,
		"max_level", cfg.Split.MaxLevel,
		"policy", cfg.Split.Policy,
		"cache", cfg.Cache.Backend,
		"history", cfg.History.Backend)
	return srv.ListenAndServe(ctx, addr)
}
