package main

import (
	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/api"
	"github.com/mizutori/pagelens/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pagelens",
	Short: "OCR region service for scanned manga and book pages",
	Long: `PageLens serves OCR text regions for scanned manga and book pages.

It fetches page images, splits tall scans into bands the detection
backend can handle, merges detected line fragments into readable
text blocks, and caches the results per page URL.

The server provides:
  - Single-page OCR with on-disk caching
  - Background chapter preprocessing
  - Cache export, import, and purge`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pagelens/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "pagelens home directory (default: ~/.pagelens)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
