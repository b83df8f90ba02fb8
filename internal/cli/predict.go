package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/dermascan-api/internal/app"
)

type PredictOptions struct {
	root  *RootOptions
	Image string
}

func NewCmdPredict(rootOptions *RootOptions) *cobra.Command {
	predictOptions := &PredictOptions{root: rootOptions}
	command := &cobra.Command{
		Use:   "predict <image>",
		Short: "diagnose a single image file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				predictOptions.Image = args[0]
			}

			if predictOptions.Image == "" {
				return fmt.Errorf("image path cannot be empty")
			}

			return predictOptions.run(cmd)
		},
	}

	command.Flags().StringVar(&predictOptions.Image, "image", "", "image file to diagnose")
	return command
}

func (o *PredictOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := os.ReadFile(o.Image)
	if err != nil {
		return err
	}

	cfg, log, err := o.root.load()
	if err != nil {
		return err
	}
	cfg.History.Enabled = false

	a, err := app.Build(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.Service.Diagnose(ctx, raw)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
