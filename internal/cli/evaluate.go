package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/dermascan-api/internal/app"
	"github.com/Brownie44l1/dermascan-api/internal/dataset"
	"github.com/Brownie44l1/dermascan-api/internal/evaluate"
)

type EvaluateOptions struct {
	root       *RootOptions
	Dir        string
	Extensions []string
	Workers    int
	Limit      int
	Seed       int64
}

func NewCmdEvaluate(rootOptions *RootOptions) *cobra.Command {
	evaluateOptions := &EvaluateOptions{root: rootOptions}
	command := &cobra.Command{
		Use:   "evaluate <test-dir>",
		Short: "evaluate the configured model on a labeled directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				evaluateOptions.Dir = args[0]
			}

			if err := evaluateOptions.Validate(); err != nil {
				return err
			}

			return evaluateOptions.run(cmd)
		},
	}

	flags := command.Flags()
	flags.StringVar(&evaluateOptions.Dir, "dir", "", "test directory with one subdirectory per class")
	flags.StringSliceVar(&evaluateOptions.Extensions, "ext", dataset.DefaultExtensions, "image file extensions to include")
	flags.IntVar(&evaluateOptions.Workers, "workers", 0, "concurrent image loaders (0 = GOMAXPROCS)")
	flags.IntVar(&evaluateOptions.Limit, "limit", 0, "evaluate at most this many images (0 = all)")
	flags.Int64Var(&evaluateOptions.Seed, "seed", 123, "shuffle seed used to pick the --limit subset")
	return command
}

func (o *EvaluateOptions) Validate() error {
	if o.Dir == "" {
		return fmt.Errorf("test directory cannot be empty")
	}
	if o.Workers < 0 || o.Limit < 0 {
		return fmt.Errorf("workers and limit cannot be negative")
	}
	return nil
}

func (o *EvaluateOptions) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := o.root.load()
	if err != nil {
		return err
	}
	// evaluation never needs the cache or history
	cfg.Cache.Enabled = false
	cfg.History.Enabled = false

	a, err := app.Build(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ds, err := dataset.Scan(o.Dir, o.Extensions)
	if err != nil {
		return err
	}
	samples := ds.Subset(o.Limit, o.Seed).Samples
	_, _ = fmt.Fprintf(out, "Evaluating %d images from %d classes\n", len(samples), len(ds.Classes))

	pre, err := a.Model.Metadata.Preprocessor(cfg.Model.ResizeFilter)
	if err != nil {
		return err
	}
	report, err := evaluate.Run(ctx, samples, a.Model.Metadata.Classes, a.Model, evaluate.ImageLoader(pre), evaluate.Options{
		Workers: o.Workers,
		Progress: func(done, total int) {
			if done%100 == 0 || done == total {
				log.WithFields(logrus.Fields{"done": done, "total": total}).Info("evaluation progress")
			}
		},
	})
	if err != nil {
		PrintWarning(out, fmt.Sprintf("evaluation failed: %v\n", err))
		return err
	}

	printReport(out, report)
	return nil
}
