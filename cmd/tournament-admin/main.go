package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version:       version,
	Use:           "tournament-admin",
	Short:         "Tournament administration backend and schema tools",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(phaseTypesCmd)
	rootCmd.AddCommand(schemaCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
