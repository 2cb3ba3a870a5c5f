package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/pkg/pipeline"
	"github.com/firemesscode/drevorod/pkg/render"
)

const defaultOutputBase = "family"

func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		formats string
		scale   float64
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the family tree to SVG, PNG, PDF or other formats",
		Long: `Render the family tree in the configured store.

Formats: svg (default), png, pdf, json, toml, dot, graphviz. With a single
format --output is the file name; with several it is the base path and each
file gets the format's extension. PNG and PDF need rsvg-convert on PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := parseFormats(formats)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), flags, fs, output, scale)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (default: family)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s), comma-separated")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, flags layoutFlags, formats []render.Format, output string, scale float64) error {
	logger := loggerFromContext(ctx)

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
	opts.Formats = formats
	opts.Scale = scale

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := st.Snapshot(ctx)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Laying out the family tree...")
	spinner.Start()
	result, err := runner.Execute(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logger.Debug("pipeline finished", "stats", result.Stats.String())

	var written []string
	for _, f := range formats {
		path := outputPath(output, f, len(formats) == 1)
		if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(written)))

	printSuccess("Render complete")
	for _, p := range written {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	for _, d := range result.Layout.Diagnostics {
		printWarning("skipped %s: %s", d.Subject(), d.Reason)
	}
	return nil
}

// outputPath picks the file for format f. A single format uses output
// as given when it has an extension; otherwise the known extension is
// stripped and replaced.
func outputPath(output string, f render.Format, single bool) string {
	if output == "" {
		return defaultOutputBase + "." + f.Extension()
	}
	ext := filepath.Ext(output)
	if single && ext != "" {
		return output
	}
	if _, err := render.FormatFromPath(output); err == nil {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + f.Extension()
}
