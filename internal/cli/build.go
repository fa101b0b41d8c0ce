package cli

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hivedoc/pkg/config"
	"github.com/matzehuels/hivedoc/pkg/errors"
	"github.com/matzehuels/hivedoc/pkg/site"
)

// buildOpts holds the command-line overrides for the build command.
type buildOpts struct {
	source  string
	output  string
	format  string
	noCache bool
}

// apply copies the non-empty overrides onto cfg.
func (o buildOpts) apply(cfg *config.Config) {
	if o.source != "" {
		cfg.SourceDir = o.source
	}
	if o.output != "" {
		cfg.OutputDir = o.output
	}
	if o.format != "" {
		cfg.ImageFormat = o.format
	}
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the Markdown documentation to HTML",
		Long: `Render every Markdown document under the source directory to HTML.

Fenced blocks tagged hive_diagram are replaced by a table showing the
pipeline configuration next to its diagram. Diagrams are produced by
$EHIVE_ROOT_DIR/scripts/generate_graph.pl, so EHIVE_ROOT_DIR must point at
an eHive checkout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), cfg, opts.noCache)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "source directory (overrides source_dir)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (overrides output_dir)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "diagram image format: svg, png")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image cache")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, cfg config.Config, noCache bool) error {
	images, store, err := c.newImageRenderer(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	builder := site.NewBuilder(site.Options{
		SourceDir:   cfg.SourceDir,
		OutputDir:   cfg.OutputDir,
		BuildDir:    cfg.BuildDir,
		Title:       cfg.Title,
		ImageFormat: cfg.ImageFormat,
	}, newScriptRenderer(cfg), images, c.Logger)

	var spinner *Spinner
	if c.Logger.GetLevel() > log.DebugLevel {
		spinner = newSpinnerWithContext(ctx, "Building "+cfg.SourceDir+"...")
		spinner.Start()
	}
	prog := newProgress(c.Logger)

	res, err := builder.Build(ctx)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Build failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		if errors.Is(err, errors.ErrCodeMissingEnv) {
			printDetail("Set EHIVE_ROOT_DIR to the root of an eHive checkout")
		}
		return err
	}

	prog.done("Build finished")
	printSuccess("Built %s", StyleValue.Render(cfg.OutputDir))
	printStats(len(res.Pages), res.Diagrams, len(res.Skipped))
	for _, p := range res.Pages {
		printFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(p.Output)))
	}
	printNextStep("Preview it", appName+" serve")
	return nil
}
