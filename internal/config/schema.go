package config

import "time"

// Config holds uccserver configuration.
// Loaded from the --config file, or else from config.yaml in the working
// directory or ~/.uccompare; nested settings are not overridden by UCC_
// environment variables (see Manager.initViper).
type Config struct {
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" yaml:"orchestrator"`
	Embedder     EmbedderConfig     `mapstructure:"embedder" yaml:"embedder"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds the HTTP/WS listener settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// OrchestratorConfig mirrors orchestrator.Config's tunables so they can be
// loaded from file/env instead of hardcoded defaults.
type OrchestratorConfig struct {
	MaxRetries             int           `mapstructure:"max_retries" yaml:"max_retries"`
	SegmentSoftTimeout     time.Duration `mapstructure:"segment_soft_timeout" yaml:"segment_soft_timeout"`
	JobHardTimeout         time.Duration `mapstructure:"job_hard_timeout" yaml:"job_hard_timeout"`
	WorkerConcurrency      int           `mapstructure:"worker_concurrency" yaml:"worker_concurrency"`
	SimilarityThreshold    float64       `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	MaxCandidatesPerClause int           `mapstructure:"max_candidates_per_clause" yaml:"max_candidates_per_clause"`
	JobTTL                 time.Duration `mapstructure:"job_ttl" yaml:"job_ttl"`
}

// EmbedderConfig selects and configures the clause embedding backend
// (§4.5: BackendAuto prefers the remote backend when an API key is set,
// falling back to the local hashing backend otherwise).
type EmbedderConfig struct {
	Backend string               `mapstructure:"backend" yaml:"backend"`
	Remote  RemoteEmbedderConfig `mapstructure:"remote" yaml:"remote"`
}

// RemoteEmbedderConfig configures the OpenAI-compatible remote embedder.
type RemoteEmbedderConfig struct {
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Model      string        `mapstructure:"model" yaml:"model"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StorageConfig selects the JobStore/SegmentStore backend. Postgres fields
// mirror store.Config and are set from the config file only (no UCC_DB_*
// env vars are read); they're ignored when Backend is "memory".
type StorageConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend"` // "memory" or "postgres"
	DBHost   string `mapstructure:"db_host" yaml:"db_host"`
	DBPort   int    `mapstructure:"db_port" yaml:"db_port"`
	DBUser   string `mapstructure:"db_user" yaml:"db_user"`
	DBPass   string `mapstructure:"db_password" yaml:"db_password"`
	DBName   string `mapstructure:"db_name" yaml:"db_name"`
	SSLMode  string `mapstructure:"db_sslmode" yaml:"db_sslmode"`
}

// LoggingConfig controls slog setup.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// DefaultConfig returns configuration with sensible defaults (§5).
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Orchestrator: OrchestratorConfig{
			MaxRetries:             3,
			SegmentSoftTimeout:     540 * time.Second,
			JobHardTimeout:         600 * time.Second,
			WorkerConcurrency:      2,
			SimilarityThreshold:    0.72,
			MaxCandidatesPerClause: 2,
			JobTTL:                 24 * time.Hour,
		},
		Embedder: EmbedderConfig{
			Backend: "auto",
			Remote: RemoteEmbedderConfig{
				APIKey:     "${OPENAI_API_KEY}",
				BaseURL:    "",
				Model:      "text-embedding-3-small",
				MaxRetries: 3,
				Timeout:    30 * time.Second,
			},
		},
		Storage: StorageConfig{
			Backend: "memory",
			DBPort:  5432,
			SSLMode: "disable",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetAPIKey returns the resolved remote embedder API key, expanding any
// ${ENV_VAR} reference.
func (c *Config) GetAPIKey() string {
	return ResolveEnvVars(c.Embedder.Remote.APIKey)
}
