package embed

import (
	"context"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jordigilh/uccompare/internal/uccerr"
)

// RemoteConfig configures the OpenAI-compatible remote embedding backend.
type RemoteConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	MaxRetries int
}

// RemoteEmbedder calls an OpenAI-compatible embeddings endpoint.
//
// Grounded on internal/providers/openai_tts.go's client-construction
// pattern (option.WithAPIKey/WithBaseURL/WithHTTPClient/WithMaxRetries).
type RemoteEmbedder struct {
	client openai.Client
	model  string
}

// NewRemote constructs a RemoteEmbedder from cfg.
func NewRemote(cfg RemoteConfig) *RemoteEmbedder {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: CallTimeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(maxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &RemoteEmbedder{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (r *RemoteEmbedder) Name() string { return "remote/" + r.model }

func (r *RemoteEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	vecs, err := r.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (r *RemoteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	resp, err := r.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: r.model,
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, uccerr.EmbeddingTransient("remote embedding call failed", err)
	}

	byIndex := make(map[int64]Vector, len(resp.Data))
	for _, d := range resp.Data {
		v := make(Vector, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = f
		}
		byIndex[d.Index] = normalize(v)
	}

	out := make([]Vector, len(texts))
	for i := range texts {
		v, ok := byIndex[int64(i)]
		if !ok {
			return nil, uccerr.EmbeddingTransient("remote embedding response missing an input index", nil)
		}
		out[i] = v
	}
	return out, nil
}
