package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// LocalEmbedder is a deterministic, dependency-free embedding backend: it
// hashes overlapping word shingles into a fixed-width vector. It exists so
// the pipeline has a usable Embedder with no external credentials, not as
// a semantic-quality baseline — no pack library offers an in-process
// embedding model, so this is hand-rolled glue (see DESIGN.md).
type LocalEmbedder struct{}

// NewLocal creates a LocalEmbedder.
func NewLocal() *LocalEmbedder { return &LocalEmbedder{} }

func (l *LocalEmbedder) Name() string { return "local/hash-256" }

func (l *LocalEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	return hashEmbed(text), nil
}

func (l *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	for i, t := range texts {
		out[i] = hashEmbed(t)
	}
	return out, nil
}

// hashEmbed folds sha256 digests of each token and token-bigram into a
// Dimension-wide vector, then L2-normalizes it.
func hashEmbed(text string) Vector {
	v := make(Vector, Dimension)
	tokens := strings.Fields(strings.ToLower(text))

	add := func(key string) {
		sum := sha256.Sum256([]byte(key))
		bucket := int(binary.BigEndian.Uint64(sum[0:8]) % Dimension)
		sign := 1.0
		if sum[8]&1 == 1 {
			sign = -1.0
		}
		v[bucket] += sign
	}

	for _, tok := range tokens {
		add(tok)
	}
	for i := 0; i+1 < len(tokens); i++ {
		add(tokens[i] + "_" + tokens[i+1])
	}

	return normalize(v)
}

func normalize(v Vector) Vector {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
