// Package embedder wraps the embedding providers behind a small vector
// interface. A nil Embedder is a supported degraded mode: retrieval falls
// back to keyword scoring.
package embedder

import (
	"context"
	"fmt"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
)

// Embedder computes fixed-length vectors for texts. EmbedDocuments returns
// one vector per input, same order.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type chromaEmbedder struct {
	ef embeddings.EmbeddingFunction
}

// NewOpenAI builds an embedder backed by the OpenAI embeddings API.
func NewOpenAI(apiKey, model string) (Embedder, error) {
	ef, err := openai.NewOpenAIEmbeddingFunction(apiKey,
		openai.WithModel(openai.EmbeddingModel(model)))
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
	}

	return &chromaEmbedder{ef: ef}, nil
}

// NewGemini builds an embedder backed by the Gemini embeddings API.
func NewGemini(apiKey, model string) (Embedder, error) {
	ef, err := gemini.NewGeminiEmbeddingFunction(
		gemini.WithAPIKey(apiKey),
		gemini.WithDefaultModel(embeddings.EmbeddingModel(model)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
	}

	return &chromaEmbedder{ef: ef}, nil
}

func (c *chromaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embs, err := c.ef.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}

	out := make([][]float32, len(embs))
	for i, e := range embs {
		out[i] = e.ContentAsFloat32()
	}

	return out, nil
}

func (c *chromaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e, err := c.ef.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return e.ContentAsFloat32(), nil
}
