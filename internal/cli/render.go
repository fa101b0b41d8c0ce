package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hivedoc/pkg/config"
	"github.com/matzehuels/hivedoc/pkg/diagram"
	"github.com/matzehuels/hivedoc/pkg/errors"
	"github.com/matzehuels/hivedoc/pkg/session"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file, stdout when empty
	format  string // dot, svg or png
	noCache bool
}

// validRenderFormats is the set of formats the render command can write.
var validRenderFormats = map[string]bool{diagram.FormatDOT: true, "svg": true, "png": true}

// renderCommand creates the render command for a single snippet.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: diagram.FormatDOT}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render one pipeline-config snippet to DOT, SVG or PNG",
		Long: `Render one pipeline-config snippet, the text you would put inside a
hive_diagram block, to a diagram. Reads standard input when file is "-" or
omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validRenderFormats[opts.format] {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot', 'svg' or 'png')", opts.format)
			}
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			snippet, err := readSnippet(src, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, snippet, &opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image cache")

	return cmd
}

// readSnippet reads the snippet from path, or from stdin for "-".
func readSnippet(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFilesystem, err, "read %s", path)
	}
	snippet := strings.TrimSuffix(string(data), "\n")
	if strings.TrimSpace(snippet) == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "empty pipeline configuration")
	}
	return snippet, nil
}

func (c *CLI) runRender(ctx context.Context, cfg config.Config, snippet string, opts *renderOpts, stdout io.Writer) error {
	var dot string
	err := session.Run(ctx, cfg.BuildDir, c.Logger, func(ctx context.Context, s *session.Session) error {
		var err error
		dot, err = diagram.NewGenerator(s, newScriptRenderer(cfg), c.Logger).Generate(ctx, snippet)
		return err
	})
	if err != nil {
		return err
	}

	data := []byte(dot)
	if opts.format != diagram.FormatDOT {
		images, store, err := c.newImageRenderer(ctx, cfg, opts.noCache)
		if err != nil {
			return err
		}
		defer store.Close()
		if data, err = images.Render(ctx, dot, opts.format); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "write %s", opts.output)
	}
	printSuccess("Rendered %s", opts.format)
	printFile(opts.output)
	printDetail("%d bytes", len(data))
	return nil
}
