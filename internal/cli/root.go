package cli

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/dermascan-api/internal/config"
	"github.com/Brownie44l1/dermascan-api/internal/logging"
)

type RootOptions struct {
	configPath string
	verbosity  string
	logFormat  string
}

func NewLesionCtlCommand() *cobra.Command {
	rootOptions := &RootOptions{}
	rootCmd := &cobra.Command{
		Use:           "lesionctl",
		Short:         "offline tooling for the skin lesion classifier",
		Long:          "lesionctl indexes labeled image directories, writes model metadata, evaluates exported models and runs single predictions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(NewCmdDataset())
	rootCmd.AddCommand(NewCmdMetadata())
	rootCmd.AddCommand(NewCmdEvaluate(rootOptions))
	rootCmd.AddCommand(NewCmdPredict(rootOptions))

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootOptions.configPath, "config", "c", defaultConfigPath(), "Path to the YAML configuration")
	flags.StringVarP(&rootOptions.verbosity, "verbosity", "v", logrus.WarnLevel.String(), "Log level (debug, info, warn, error, fatal, panic)")
	flags.StringVar(&rootOptions.logFormat, "log-format", "text", "Log format (text, json)")

	return rootCmd
}

func defaultConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}
	return filepath.Join("config", "config.yaml")
}

// load reads the configuration and builds a logger honouring --verbosity.
func (ro *RootOptions) load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(ro.configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(logging.Config{Level: ro.verbosity, Format: ro.logFormat})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
