// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jordigilh/uccompare/internal/config"
	"github.com/jordigilh/uccompare/internal/metrics"
	"github.com/jordigilh/uccompare/internal/orchestrator"
	"github.com/jordigilh/uccompare/internal/progressbus"
	"github.com/jordigilh/uccompare/internal/store"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Jobs         store.JobStore
	Segments     store.SegmentStore
	Bus          *progressbus.Bus
	ConfigMgr    *config.Manager
	Metrics      *metrics.Recorder
	Logger       *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// OrchestratorFrom extracts the job orchestrator from context.
func OrchestratorFrom(ctx context.Context) *orchestrator.Orchestrator {
	if s := ServicesFrom(ctx); s != nil {
		return s.Orchestrator
	}
	return nil
}

// JobsFrom extracts the JobStore from context.
func JobsFrom(ctx context.Context) store.JobStore {
	if s := ServicesFrom(ctx); s != nil {
		return s.Jobs
	}
	return nil
}

// SegmentsFrom extracts the SegmentStore from context.
func SegmentsFrom(ctx context.Context) store.SegmentStore {
	if s := ServicesFrom(ctx); s != nil {
		return s.Segments
	}
	return nil
}

// BusFrom extracts the progress bus from context.
func BusFrom(ctx context.Context) *progressbus.Bus {
	if s := ServicesFrom(ctx); s != nil {
		return s.Bus
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// ConfigMgrFrom extracts the config manager from context.
func ConfigMgrFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigMgr
	}
	return nil
}

// MetricsFrom extracts the metrics recorder from context.
func MetricsFrom(ctx context.Context) *metrics.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Metrics
	}
	return nil
}
