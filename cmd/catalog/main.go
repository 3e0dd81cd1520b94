package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coastwatch-labs/catalog/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Harvest remote scientific datasets into a searchable catalog",
	Long: `catalog periodically contacts registered DAP services, classifies each
dataset's variables and feature type, resolves its geometry and time range,
scores its metadata and merges the result into the catalog.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
