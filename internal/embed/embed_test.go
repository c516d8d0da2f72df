package embed

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbedder_Deterministic(t *testing.T) {
	l := NewLocal()
	v1, err := l.Embed(context.Background(), "we will pay for theft")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	v2, err := l.Embed(context.Background(), "we will pay for theft")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("embeddings not deterministic at index %d: %v vs %v", i, v1[i], v2[i])
		}
	}
}

func TestLocalEmbedder_L2Normalized(t *testing.T) {
	v, err := NewLocal().Embed(context.Background(), "flood damage is excluded")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if math.Abs(norm-1.0) > 1e-6 {
		t.Errorf("norm = %v, want ~1.0", norm)
	}
}

func TestLocalEmbedder_BatchMatchesSingleOrder(t *testing.T) {
	l := NewLocal()
	texts := []string{"we will pay", "we will not pay", "subject to terms"}

	batch, err := l.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(batch), len(texts))
	}

	for i, text := range texts {
		single, err := l.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed() error = %v", err)
		}
		for j := range single {
			if single[j] != batch[i][j] {
				t.Fatalf("batch[%d] != single embed for %q at index %d", i, text, j)
			}
		}
	}
}

func TestSelect_FallsBackToLocalWithoutCredentials(t *testing.T) {
	e := Select(BackendAuto, RemoteConfig{})
	if e.Name() != "local/hash-256" {
		t.Errorf("Select(auto, no creds) = %s, want local backend", e.Name())
	}

	e = Select(BackendRemote, RemoteConfig{})
	if e.Name() != "local/hash-256" {
		t.Errorf("Select(remote, no creds) = %s, want local fallback", e.Name())
	}
}

func TestSelect_PrefersRemoteWhenConfigured(t *testing.T) {
	e := Select(BackendAuto, RemoteConfig{APIKey: "sk-test"})
	if e.Name() == "local/hash-256" {
		t.Error("Select(auto) with credentials should prefer remote")
	}
}
