package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/pipeline"
	"github.com/firemesscode/drevorod/pkg/render"
)

// layoutFlags are shared by the layout and render commands.
type layoutFlags struct {
	engine  string
	noCache bool
	refresh bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "", "layout engine: dot, layered (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

func (f *layoutFlags) apply(opts *pipeline.Options) {
	if f.engine != "" {
		opts.Engine = f.engine
	}
	opts.Refresh = f.refresh
}

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		toml   bool
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the tree layout and print it as JSON",
		Long: `Compute positioned nodes and edges for the family in the configured store.

The layout is written to stdout, or to --output. Layouts are cached by the
content of the family, so repeated runs on an unchanged family are instant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := render.FormatJSON
			if toml {
				format = render.FormatTOML
			}
			return c.runLayout(cmd.Context(), flags, format, output)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&toml, "toml", false, "write TOML instead of JSON")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, flags layoutFlags, format render.Format, output string) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	opts, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	flags.apply(&opts)
	opts.Formats = []render.Format{format}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := st.Snapshot(ctx)
	if err != nil {
		return err
	}
	result, err := runner.Execute(ctx, snap, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	for _, d := range result.Layout.Diagnostics {
		c.Logger.Warn("skipped", "what", d.Subject(), "reason", d.Reason)
	}

	data := result.Artifacts[format]
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	return nil
}
