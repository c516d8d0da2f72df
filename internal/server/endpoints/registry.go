package endpoints

import (
	"github.com/jordigilh/uccompare/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
}

// All returns all endpoint instances (§6).
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Single-document endpoint
		&PreprocessEndpoint{},

		// Synchronous comparison
		&CompareEndpoint{},

		// Async job endpoints
		&SubmitCompareJobEndpoint{},
		&ListJobsEndpoint{},
		&GetJobEndpoint{},
		&GetJobResultEndpoint{},
		&CancelJobEndpoint{},

		// Progress streaming
		&ProgressWSEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}

// JobCommands returns the job endpoints whose commands cmd/uccserver groups
// under the "jobs" subcommand.
func JobCommands() []api.Endpoint {
	return []api.Endpoint{
		&SubmitCompareJobEndpoint{},
		&ListJobsEndpoint{},
		&GetJobEndpoint{},
		&GetJobResultEndpoint{},
		&CancelJobEndpoint{},
	}
}
