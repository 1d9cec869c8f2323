package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "fiberctl",
		Short:   "fiberctl drives small demo workloads on the fiber scheduler core",
		Version: version,
	}

	rootCmd.AddCommand(newDemoCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
