// Package cli implements the dataset maintenance command line: shrinking a
// raw recipe dump for deployment, writing the built-in sample dataset, and
// running recommendation queries offline against any dataset source.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pageza/dietrec/backend/config"
	"github.com/pageza/dietrec/backend/internal/dataset"
	"github.com/pageza/dietrec/backend/internal/logging"
)

const name = "dietrec-dataset"

// overridden during build with ldflags
var version = "dev"

const (
	regionFlagName   = "aws-region"
	endpointFlagName = "s3-endpoint"
)

// s3Flags configure the client used for s3:// locations.
func s3Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    regionFlagName,
			Value:   "us-east-1",
			Usage:   "AWS region for s3:// sources",
			Sources: cli.EnvVars("AWS_REGION"),
		},
		&cli.StringFlag{
			Name:  endpointFlagName,
			Usage: "S3-compatible endpoint URL (path-style addressing)",
		},
	}
}

// NewCommand builds the root command. Output goes to w.
func NewCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Maintain and query recipe datasets",
		Version: version,
		Writer:  w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Init(logging.Config{
				Level:  cmd.String("log-level"),
				Format: "console",
				Output: os.Stderr,
			})
			return ctx, nil
		},
		Commands: []*cli.Command{
			optimizeCmd(),
			seedCmd(),
			queryCmd(),
		},
	}
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	if err := NewCommand(os.Stdout).Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// loadTable reads the first loadable table from locations.
func loadTable(ctx context.Context, cmd *cli.Command, locations []string) (*dataset.Table, error) {
	var getter dataset.ObjectGetter
	if dataset.NeedsS3(locations) {
		client, err := config.NewS3Client(ctx, config.AWSConfig{
			Region:   cmd.String(regionFlagName),
			Endpoint: cmd.String(endpointFlagName),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		getter = client
	}

	sources, err := dataset.ParseSources(locations, getter)
	if err != nil {
		return nil, err
	}
	return dataset.NewLoader(sources...).Load(ctx)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
