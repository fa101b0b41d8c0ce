package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hivedoc/pkg/config"
	"github.com/matzehuels/hivedoc/pkg/publish"
)

// publishOpts holds the command-line overrides for the publish command.
type publishOpts struct {
	bucket string
	prefix string
	build  bool
}

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	var opts publishOpts

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the built site to S3",
		Long: `Upload the output directory to an S3 bucket, or to an S3-compatible
store when publish.endpoint is set. Credentials come from the standard AWS
environment variables and shared configuration files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.bucket != "" {
				cfg.Publish.Bucket = opts.bucket
			}
			if opts.prefix != "" {
				cfg.Publish.Prefix = opts.prefix
			}
			if err := cfg.ValidatePublish(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if opts.build {
				if err := c.runBuild(ctx, cfg, false); err != nil {
					return err
				}
			}
			return c.runPublish(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.bucket, "bucket", "b", "", "destination bucket (overrides publish.bucket)")
	cmd.Flags().StringVarP(&opts.prefix, "prefix", "p", "", "object key prefix (overrides publish.prefix)")
	cmd.Flags().BoolVar(&opts.build, "build", false, "build the site before publishing")

	return cmd
}

func (c *CLI) runPublish(ctx context.Context, cfg config.Config) error {
	pub, err := publish.New(ctx, publish.Config{
		Bucket:    cfg.Publish.Bucket,
		Region:    cfg.Publish.Region,
		Endpoint:  cfg.Publish.Endpoint,
		Prefix:    cfg.Publish.Prefix,
		PathStyle: cfg.Publish.PathStyle,
	}, c.Logger)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Uploading "+cfg.OutputDir+"...")
	spinner.Start()
	res, err := pub.Publish(ctx, cfg.OutputDir)
	if err != nil {
		spinner.StopWithError("Upload failed")
		return err
	}
	spinner.Stop()

	printSuccess("Published %d files to %s", len(res.Keys), StyleLink.Render(fmt.Sprintf("s3://%s/%s", cfg.Publish.Bucket, publish.ObjectKey(cfg.Publish.Prefix, ""))))
	printDetail("%d bytes in %s", res.Bytes, res.Duration.Round(time.Millisecond))
	return nil
}
