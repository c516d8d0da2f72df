// uccompare API
//
//	@title			uccompare API
//	@version		1.0
//	@description	Clause-level comparison API for insurance policy PDFs.
//
//	@contact.name	API Support
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/config"
	"github.com/jordigilh/uccompare/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the uccompare server",
	Long: `Start the uccompare HTTP/WS server.

The server provides:
  - /health, /ready        - health and readiness checks
  - /ucc/preprocess        - parse a single PDF
  - /ucc/compare           - synchronous clause comparison
  - /jobs/compare          - submit an async comparison job
  - /jobs, /jobs/{id}      - job listing and lookup
  - /ws/jobs/{id}          - progress streaming

Examples:
  uccserver serve                 # Start using ./config.yaml or ~/.uccompare/config.yaml
  uccserver serve --config a.yaml # Start with an explicit config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: GetLogLevel(),
		}))

		configFile := cfgFile
		if configFile == "" {
			if _, err := os.Stat("config.yaml"); err == nil {
				configFile = "config.yaml"
			}
		}

		if configFile != "" {
			if _, err := os.Stat(configFile); os.IsNotExist(err) {
				logger.Info("creating default config", "path", configFile)
				if err := config.WriteDefault(configFile); err != nil {
					logger.Warn("failed to write default config", "error", err)
				}
			}
		}

		cfgMgr, err := config.NewManager(configFile)
		if err != nil {
			logger.Warn("config not loaded, using defaults", "error", err)
		} else {
			cfgMgr.WatchConfig()
			logger.Info("configuration loaded", "file", configFile)
		}

		srv, err := server.New(server.Config{
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
