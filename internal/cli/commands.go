package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pageza/dietrec/backend/internal/dataset"
	apperrors "github.com/pageza/dietrec/backend/internal/errors"
	"github.com/pageza/dietrec/backend/internal/model"
	"github.com/pageza/dietrec/backend/internal/service"
	"github.com/pageza/dietrec/backend/internal/types"
)

// errQueryFailed follows a failure envelope already written to the output.
var errQueryFailed = errors.New("query failed")

func optimizeCmd() *cli.Command {
	defaults := dataset.DefaultOptimizeOptions()
	return &cli.Command{
		Name:  "optimize",
		Usage: "Shrink a raw recipe dataset for deployment",
		Description: `Drops rows missing a name, ingredients or instructions, keeps a
deterministic sample, truncates long strings and writes the result. The
output is compressed by extension (.gz or .zst).`,
		Flags: append([]cli.Flag{
			&cli.StringSliceFlag{
				Name:     "in",
				Usage:    "input dataset (path or s3://bucket/key); repeat to try fallbacks in order",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Usage:    "output path",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "sample",
				Value: defaults.Sample,
				Usage: "rows to keep; 0 keeps every row",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: defaults.Seed,
				Usage: "sampling seed",
			},
			&cli.IntFlag{
				Name:  "max-len",
				Value: defaults.MaxLen,
				Usage: "truncate strings to this many characters; 0 disables",
			},
		}, s3Flags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			table, err := loadTable(ctx, cmd, cmd.StringSlice("in"))
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}

			optimized, report := dataset.Optimize(table, dataset.OptimizeOptions{
				Sample: cmd.Int("sample"),
				Seed:   cmd.Uint64("seed"),
				MaxLen: cmd.Int("max-len"),
			})
			out := cmd.String("out")
			if err := dataset.WriteFile(out, optimized); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "read %d rows from %s, dropped %d incomplete, wrote %d to %s\n",
				report.Input, table.Source(), report.Dropped, report.Output, out)
			return nil
		},
	}
}

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Write the built-in five recipe test dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Value: "Data/dataset_test.csv",
				Usage: "output path",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			out := cmd.String("out")
			if err := dataset.WriteFile(out, dataset.SampleTable()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "wrote %d sample recipes to %s\n", len(dataset.SampleRecipes()), out)
			return nil
		},
	}
}

func queryCmd() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Run a recommendation query offline and print the response envelope",
		Flags: append([]cli.Flag{
			&cli.StringSliceFlag{
				Name:     "source",
				Usage:    "dataset (path or s3://bucket/key); repeat to try fallbacks in order",
				Required: true,
			},
			&cli.Float64SliceFlag{
				Name:     "nutrition",
				Usage:    fmt.Sprintf("%d comma separated target values", model.NutritionDims),
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "ingredient",
				Usage: "ingredient every result must contain; repeatable",
			},
			&cli.IntFlag{
				Name:  "k",
				Value: service.DefaultNeighbors,
				Usage: "number of recipes to return",
			},
			&cli.BoolFlag{
				Name:  "distances",
				Usage: "include cosine distances",
			},
			&cli.BoolFlag{
				Name:  "standardize",
				Usage: "z-score the nutrition matrix before searching",
			},
		}, s3Flags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			q := service.Query{
				Nutrition:     cmd.Float64Slice("nutrition"),
				Ingredients:   cmd.StringSlice("ingredient"),
				Neighbors:     cmd.Int("k"),
				WithDistances: cmd.Bool("distances"),
			}

			table, err := loadTable(ctx, cmd, cmd.StringSlice("source"))
			if err != nil {
				_ = writeJSON(w, types.Failure(err.Error(), "Failed to load dataset"))
				return errQueryFailed
			}

			svc := service.NewRecommendationService(dataset.NewStaticStore(table), service.RecommendationOptions{
				Standardize: cmd.Bool("standardize"),
			})
			res, err := svc.Recommend(ctx, q)
			if err != nil {
				msg := "Failed to generate recommendations"
				if apperrors.CodeOf(err) == apperrors.CodeInvalidQuery {
					msg = "Invalid request"
				}
				_ = writeJSON(w, types.Failure(err.Error(), msg))
				return errQueryFailed
			}
			return writeJSON(w, types.Success(types.FormatResult(res), res.Message))
		},
	}
}
