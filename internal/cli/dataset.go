package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/dermascan-api/internal/dataset"
)

type DatasetOptions struct {
	Dir             string
	ValidationSplit float64
	Seed            int64
	Extensions      []string
	Manifest        string
}

func NewCmdDataset() *cobra.Command {
	datasetOptions := &DatasetOptions{}
	command := &cobra.Command{
		Use:   "dataset <dir>",
		Short: "index a labeled image directory",
		Long:  "index a directory with one subdirectory per class and compute a seeded train/validation split",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				datasetOptions.Dir = args[0]
			}

			if err := datasetOptions.Validate(); err != nil {
				return err
			}

			return datasetOptions.run(cmd)
		},
	}

	flags := command.Flags()
	flags.StringVar(&datasetOptions.Dir, "dir", "", "dataset root directory")
	flags.Float64Var(&datasetOptions.ValidationSplit, "validation-split", 0.2, "fraction of samples held out for validation")
	flags.Int64Var(&datasetOptions.Seed, "seed", 123, "shuffle seed")
	flags.StringSliceVar(&datasetOptions.Extensions, "ext", dataset.DefaultExtensions, "image file extensions to include")
	flags.StringVar(&datasetOptions.Manifest, "manifest", "", "write the split to this YAML file")
	return command
}

func (o *DatasetOptions) Validate() error {
	if o.Dir == "" {
		return fmt.Errorf("dataset directory cannot be empty")
	}
	if o.ValidationSplit < 0 || o.ValidationSplit >= 1 {
		return fmt.Errorf("validation-split must be in [0, 1), got %v", o.ValidationSplit)
	}
	return nil
}

func (o *DatasetOptions) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	ds, err := dataset.Scan(o.Dir, o.Extensions)
	if err != nil {
		return err
	}
	train, validation, err := ds.Split(o.ValidationSplit, o.Seed)
	if err != nil {
		return err
	}

	counts := ds.Counts()
	printCounts(out, ds.Classes, counts)
	for _, c := range ds.Classes {
		if counts[c] == 0 {
			PrintYellow(out, fmt.Sprintf("class %q has no images\n", c))
		}
	}
	_, _ = fmt.Fprintf(out, "\nFound %d files belonging to %d classes.\n", ds.Len(), len(ds.Classes))
	_, _ = fmt.Fprintf(out, "Using %d files for training.\n", train.Len())
	_, _ = fmt.Fprintf(out, "Using %d files for validation.\n", validation.Len())

	if o.Manifest == "" {
		return nil
	}
	if err := dataset.NewManifest(ds, train, validation, o.ValidationSplit, o.Seed).Save(o.Manifest); err != nil {
		return err
	}
	PrintString(out, fmt.Sprintf("wrote split manifest [%s]\n", o.Manifest))
	return nil
}
