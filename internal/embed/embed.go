// Package embed implements the Embedder contract (spec §4.5, §9): a
// capability set {Embed, EmbedBatch} with two backends, local and remote,
// selected once at orchestration start rather than per request.
//
// Grounded on internal/providers' LLMClient/OCRProvider interface shape
// and registry.go's config-driven, startup-time backend selection.
package embed

import (
	"context"
	"time"
)

// CallTimeout is the per-call timeout mandated by §4.5.
const CallTimeout = 30 * time.Second

// Dimension is the fixed vector width produced by every backend.
const Dimension = 256

// Vector is a fixed-dimension, L2-normalized embedding.
type Vector []float64

// Embedder maps text to a dense vector. Implementations must be
// deterministic for a given model id and return EmbedBatch results in
// input order.
type Embedder interface {
	// Name identifies the backend and model, e.g. "local/hash-256" or
	// "remote/text-embedding-3-small".
	Name() string

	Embed(ctx context.Context, text string) (Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
}

// Backend selects which Embedder implementation to construct, mirroring
// the options.embedder wire field (§6): "auto" prefers remote and falls
// back to local if no remote is configured.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendLocal  Backend = "local"
	BackendRemote Backend = "remote"
)

// Select constructs the Embedder for a job at orchestration start (§9:
// backend dispatch is resolved once, not per request). remoteCfg may be
// the zero value if no remote credentials are configured, in which case
// "auto" and "remote" both fall back to local.
func Select(backend Backend, remoteCfg RemoteConfig) Embedder {
	switch backend {
	case BackendLocal:
		return NewLocal()
	case BackendRemote:
		if remoteCfg.APIKey == "" {
			return NewLocal()
		}
		return NewRemote(remoteCfg)
	default: // auto
		if remoteCfg.APIKey != "" {
			return NewRemote(remoteCfg)
		}
		return NewLocal()
	}
}
