package main

import (
	"os"

	"github.com/Brownie44l1/dermascan-api/internal/cli"
)

func main() {
	rootCmd := cli.NewLesionCtlCommand()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
