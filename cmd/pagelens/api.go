package main

import (
	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running PageLens server via HTTP.

These commands require a running server (pagelens serve).
Use --server to specify a custom server URL.

Examples:
  pagelens api health                    # Check server health
  pagelens api status                    # Show counters and cache size
  pagelens api ocr <url>                 # OCR a single page
  pagelens api chapter-status <base-url> # Check chapter preprocessing`,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.OCREndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.PreprocessChapterEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ChapterStatusEndpoint{}).Command(getServerURL))

	// Cache as subcommand group
	cacheCmd.AddCommand((&endpoints.PurgeCacheEndpoint{}).Command(getServerURL))
	cacheCmd.AddCommand((&endpoints.ExportCacheEndpoint{}).Command(getServerURL))
	cacheCmd.AddCommand((&endpoints.ImportCacheEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(apiCmd)
}
