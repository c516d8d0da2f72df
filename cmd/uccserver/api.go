package main

import (
	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call a running server",
	Long: `API commands call a running uccserver instance via HTTP.

These commands require a running server (uccserver serve).
Use --server to specify a custom server URL.

Examples:
  uccserver api health              # Check server health
  uccserver api preprocess --file a.pdf
  uccserver api compare --file-a a.pdf --file-b b.pdf
  uccserver api jobs submit --file-a a.pdf --file-b b.pdf
  uccserver api jobs list`,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Job management commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.PreprocessEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.CompareEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerUIEndpoint{}).Command(getServerURL))

	for _, ep := range endpoints.JobCommands() {
		jobsCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(apiCmd)
}
