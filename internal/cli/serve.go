package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/pipeline"
	"github.com/firemesscode/drevorod/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		engine string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the family tree over HTTP",
		Long: `Serve the live layout and the editing API.

The layout is recomputed after every change to the store. Requests carrying
"Authorization: Bearer <server.edit_token>" may edit; without a configured
token the server is read-only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, engine)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "layout engine: dot, layered")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, engine string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.ListenAddr
	}
	c.Logger.Debug("server config", "server", cfg.Server.String())

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	if engine != "" {
		opts.Engine = engine
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	live := pipeline.NewLive(runner, st, opts)
	live.OnUpdate(func(s pipeline.State) {
		if s.Err != nil {
			return
		}
		c.Logger.Info("layout updated", "version", s.Version, "nodes", len(s.Layout.Nodes), "edges", len(s.Layout.Edges))
	})
	if err := live.Start(ctx); err != nil {
		c.Logger.Warn("initial layout failed", "error", err)
	}
	defer live.Stop()

	gate := server.ReadOnly
	if cfg.Server.EditToken != "" {
		gate = server.TokenGate{Token: cfg.Server.EditToken}
	} else {
		c.Logger.Info("no edit token configured, serving read-only")
	}

	srv := server.New(server.Options{
		Store:       st,
		Live:        live,
		Runner:      runner,
		Gate:        gate,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      c.Logger,
	})
	printInfo("Serving %s on %s", st.Backend(), StyleHighlight.Render(addr))
	return srv.ListenAndServe(ctx, addr)
}
