package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jordigilh/uccompare/internal/embed"
	"github.com/jordigilh/uccompare/internal/orchestrator"
)

// optionsSchemaJSON bounds the wire shape of the `options` form field
// before it ever reaches wireOptions, rejecting malformed or
// out-of-range values with the offending field name in the error.
const optionsSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"embedder": {"type": "string", "enum": ["", "auto", "local", "remote"]},
		"similarity_threshold": {"type": "number", "minimum": 0, "maximum": 1},
		"return_token_diffs": {"type": "boolean"},
		"max_candidates_per_clause": {"type": "integer", "minimum": 1, "maximum": 10}
	}
}`

var (
	optionsSchemaOnce sync.Once
	optionsSchema     *jsonschema.Schema
)

func compiledOptionsSchema() *jsonschema.Schema {
	optionsSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("options.json", strings.NewReader(optionsSchemaJSON)); err != nil {
			panic(fmt.Sprintf("invalid options schema: %v", err))
		}
		optionsSchema = c.MustCompile("options.json")
	})
	return optionsSchema
}

// maxUploadBytes bounds the multipart form parsed into memory before
// individual file parts spill to temp files; matches net/http's own
// default so large PDFs still stream to disk instead of OOMing the
// process.
const maxUploadBytes = 32 << 20

// wireOptions is the `options` JSON object accepted by the compare
// endpoints (§6). Zero values mean "not set"; toOrchestratorOptions only overrides an
// orchestrator.Options field when the wire value is present.
type wireOptions struct {
	Embedder               string   `json:"embedder"`
	SimilarityThreshold    *float64 `json:"similarity_threshold"`
	ReturnTokenDiffs       *bool    `json:"return_token_diffs"`
	MaxCandidatesPerClause int      `json:"max_candidates_per_clause"`
}

func (w wireOptions) toOrchestratorOptions() (orchestrator.Options, error) {
	opts := orchestrator.Options{ReturnTokenDiffs: true}

	switch w.Embedder {
	case "", "auto":
		opts.Backend = embed.BackendAuto
	case "local":
		opts.Backend = embed.BackendLocal
	case "remote":
		opts.Backend = embed.BackendRemote
	default:
		return opts, fmt.Errorf("options.embedder must be one of auto, local, remote, got %q", w.Embedder)
	}

	if w.SimilarityThreshold != nil {
		if *w.SimilarityThreshold < 0 || *w.SimilarityThreshold > 1 {
			return opts, fmt.Errorf("options.similarity_threshold must be in [0,1], got %v", *w.SimilarityThreshold)
		}
		opts.SimilarityThreshold = *w.SimilarityThreshold
	}
	if w.ReturnTokenDiffs != nil {
		opts.ReturnTokenDiffs = *w.ReturnTokenDiffs
	}
	if w.MaxCandidatesPerClause != 0 {
		if w.MaxCandidatesPerClause < 1 || w.MaxCandidatesPerClause > 10 {
			return opts, fmt.Errorf("options.max_candidates_per_clause must be in [1,10], got %d", w.MaxCandidatesPerClause)
		}
		opts.MaxCandidatesPerClause = w.MaxCandidatesPerClause
	}
	return opts, nil
}

// parseOptionsPart decodes the optional `options` form field, if present.
func parseOptionsPart(r *http.Request) (wireOptions, error) {
	var w wireOptions
	raw := r.FormValue("options")
	if raw == "" {
		return w, nil
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return w, fmt.Errorf("malformed options: %w", err)
	}
	if err := compiledOptionsSchema().Validate(v); err != nil {
		return w, fmt.Errorf("invalid options: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return w, fmt.Errorf("malformed options: %w", err)
	}
	return w, nil
}

// readFilePart reads the named multipart file field fully into memory.
func readFilePart(r *http.Request, field string) ([]byte, string, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing file field %q: %w", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file field %q: %w", field, err)
	}
	return data, header.Filename, nil
}
