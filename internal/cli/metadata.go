package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/dermascan-api/internal/imaging"
	"github.com/Brownie44l1/dermascan-api/internal/model"
)

type MetadataInitOptions struct {
	Out          string
	Height       int
	Width        int
	Layout       string
	InputName    string
	OutputName   string
	ApplySoftmax bool
	Override     bool
}

func NewCmdMetadata() *cobra.Command {
	command := &cobra.Command{
		Use:   "metadata",
		Short: "manage model metadata files",
	}
	command.AddCommand(NewCmdMetadataInit())
	return command
}

func NewCmdMetadataInit() *cobra.Command {
	initOptions := &MetadataInitOptions{}
	command := &cobra.Command{
		Use:   "init",
		Short: "write default model metadata",
		Long:  "write model_metadata.json describing an exported network with the standard eight classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initOptions.Validate(); err != nil {
				return err
			}
			return initOptions.run(cmd)
		},
	}

	flags := command.Flags()
	flags.StringVar(&initOptions.Out, "out", filepath.Join("models", "model_metadata.json"), "output path")
	flags.IntVar(&initOptions.Height, "height", model.DefaultImageSize, "input image height")
	flags.IntVar(&initOptions.Width, "width", model.DefaultImageSize, "input image width")
	flags.StringVar(&initOptions.Layout, "layout", string(imaging.LayoutNHWC), "input tensor layout (NHWC, NCHW)")
	flags.StringVar(&initOptions.InputName, "input-name", model.DefaultInputName, "name of the input tensor")
	flags.StringVar(&initOptions.OutputName, "output-name", model.DefaultOutputName, "name of the output tensor")
	flags.BoolVar(&initOptions.ApplySoftmax, "softmax", false, "the exported graph emits logits")
	flags.BoolVar(&initOptions.Override, "override", false, "override an existing metadata file")
	return command
}

func (o *MetadataInitOptions) Validate() error {
	if o.Out == "" {
		return fmt.Errorf("out cannot be empty")
	}
	if o.Height <= 0 || o.Width <= 0 {
		return fmt.Errorf("height and width must be positive")
	}
	switch imaging.Layout(strings.ToUpper(o.Layout)) {
	case imaging.LayoutNHWC, imaging.LayoutNCHW:
	default:
		return fmt.Errorf("unsupported layout %q", o.Layout)
	}
	return nil
}

func (o *MetadataInitOptions) run(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(o.Out); err == nil && !o.Override {
		PrintYellow(out, fmt.Sprintf("%s exists, use --override to replace it\n", o.Out))
		return nil
	}

	m := model.DefaultMetadata(o.Height, o.Width)
	m.InputName = o.InputName
	m.OutputName = o.OutputName
	m.ApplySoftmax = o.ApplySoftmax
	if layout := imaging.Layout(strings.ToUpper(o.Layout)); layout == imaging.LayoutNCHW {
		m.Layout = string(layout)
		m.InputShape = []int64{1, 3, int64(o.Height), int64(o.Width)}
	}
	if err := m.Normalize(); err != nil {
		return err
	}

	if dir := filepath.Dir(o.Out); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := m.Save(o.Out); err != nil {
		return err
	}
	PrintString(out, fmt.Sprintf("init model metadata [%s] successfully!\n", o.Out))
	return nil
}
