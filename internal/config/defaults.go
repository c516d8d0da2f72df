package config

// Entry documents one configuration key: its default value and what it
// controls, as a human-readable settings reference; it does not back any
// runtime store.
type Entry struct {
	Key         string
	Value       any
	Description string
}

// DefaultEntries returns the documented default configuration entries.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		{
			Key:         "server.addr",
			Value:       d.Server.Addr,
			Description: "HTTP/WS listen address",
		},
		{
			Key:         "orchestrator.max_retries",
			Value:       d.Orchestrator.MaxRetries,
			Description: "Maximum retry attempts for a transient segment failure (§5)",
		},
		{
			Key:         "orchestrator.segment_soft_timeout",
			Value:       d.Orchestrator.SegmentSoftTimeout,
			Description: "Per-segment soft timeout before a segment is abandoned as timed out",
		},
		{
			Key:         "orchestrator.job_hard_timeout",
			Value:       d.Orchestrator.JobHardTimeout,
			Description: "Whole-job hard timeout; the job fails once exceeded regardless of segment progress",
		},
		{
			Key:         "orchestrator.worker_concurrency",
			Value:       d.Orchestrator.WorkerConcurrency,
			Description: "Maximum number of jobs processed concurrently",
		},
		{
			Key:         "orchestrator.similarity_threshold",
			Value:       d.Orchestrator.SimilarityThreshold,
			Description: "Minimum combined alignment score (cosine, DNA and section similarity) for a candidate clause match (§4.6)",
		},
		{
			Key:         "orchestrator.max_candidates_per_clause",
			Value:       d.Orchestrator.MaxCandidatesPerClause,
			Description: "Maximum alignment candidates considered per clause before the best is kept",
		},
		{
			Key:         "orchestrator.job_ttl",
			Value:       d.Orchestrator.JobTTL,
			Description: "How long a completed/failed/cancelled job record is retained before Purge removes it",
		},
		{
			Key:         "embedder.backend",
			Value:       d.Embedder.Backend,
			Description: `Embedding backend: "auto", "local", or "remote" (§4.5)`,
		},
		{
			Key:         "embedder.remote.api_key",
			Value:       d.Embedder.Remote.APIKey,
			Description: "Remote embedder API key (uses environment variable)",
		},
		{
			Key:         "embedder.remote.model",
			Value:       d.Embedder.Remote.Model,
			Description: "Remote embedder model name",
		},
		{
			Key:         "storage.backend",
			Value:       d.Storage.Backend,
			Description: `JobStore/SegmentStore backend: "memory" or "postgres"`,
		},
		{
			Key:         "logging.level",
			Value:       d.Logging.Level,
			Description: "slog level: debug, info, warn, error",
		},
	}
}

// GetDefault returns the default entry for a config key, or nil if unknown.
func GetDefault(key string) *Entry {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry
		}
	}
	return nil
}
