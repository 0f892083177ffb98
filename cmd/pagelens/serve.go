package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mizutori/pagelens/internal/config"
	"github.com/mizutori/pagelens/internal/home"
	"github.com/mizutori/pagelens/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PageLens server",
	Long: `Start the PageLens HTTP server.

The server answers OCR requests cache-first and runs chapter
preprocessing jobs in the background. The cache lives in the home
directory and survives restarts.

Examples:
  pagelens serve                 # Start on default port 8080
  pagelens serve --port 3000     # Start on custom port
  pagelens serve --host 0.0.0.0  # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Write a starter config on first run so users have something to edit
		if !h.ConfigExists() {
			if err := config.WriteDefault(h.ConfigPath()); err != nil {
				logger.Warn("could not write default config", "error", err)
			}
		}

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		appCfg := cfgMgr.Get()
		host := serveHost
		if !cmd.Flags().Changed("host") && appCfg.Server.Host != "" {
			host = appCfg.Server.Host
		}
		port := servePort
		if !cmd.Flags().Changed("port") && appCfg.Server.Port != "" {
			port = appCfg.Server.Port
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			CacheDir:      h.CachePath(),
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
