package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/petroserv/rag-server/docstore"
)

// Candidate is a chunk proposed by a source. Score is nil until the
// coordinator rates the chunk; sources that score during materialization
// (none currently do) may pre-fill it.
type Candidate struct {
	Chunk docstore.Chunk
	Score *float64
}

// Result is a chunk annotated with its relevance for one query. The
// annotation never flows back into the persisted chunk.
type Result struct {
	Chunk docstore.Chunk
	Score float64
}

// Source supplies candidate chunks for a query. Structured-record sources
// materialize chunks on demand; file-derived sources read the chunk store.
type Source interface {
	Name() string
	Candidates(ctx context.Context) ([]Candidate, error)
}

// Embedder turns a query into a vector, when a vector model is configured.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Query carries one retrieval request. Zero MaxResults and a nil
// MinRelevance fall back to the coordinator's configured defaults.
type Query struct {
	Text         string
	Language     string
	Category     string
	MaxResults   int
	MinRelevance *float64
}

// Coordinator fans a query out to its sources, scores every candidate,
// filters, and merges everything into a single ranked list. A failing
// source degrades the result set instead of failing the query.
type Coordinator struct {
	log          *slog.Logger
	sources      []Source
	scorer       *Scorer
	embedder     Embedder
	minRelevance float64
	maxResults   int
}

func NewCoordinator(log *slog.Logger, scorer *Scorer, embedder Embedder, minRelevance float64, maxResults int, sources ...Source) *Coordinator {
	return &Coordinator{
		log:          log,
		sources:      sources,
		scorer:       scorer,
		embedder:     embedder,
		minRelevance: minRelevance,
		maxResults:   maxResults,
	}
}

// Retrieve returns up to q.MaxResults chunks ordered by descending
// relevance. Ties keep source registration order, then chunk position, so
// identical inputs always produce identical output.
func (c *Coordinator) Retrieve(ctx context.Context, q Query) ([]Result, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = c.maxResults
	}

	minRelevance := c.minRelevance
	if q.MinRelevance != nil {
		minRelevance = *q.MinRelevance
	}

	queryEmbedding := c.embedQuery(ctx, q.Text)

	type ranked struct {
		Result
		sourceOrder int
	}

	var candidates []ranked
	for order, src := range c.sources {
		found, err := src.Candidates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("chunk source failed, continuing without it", "source", src.Name(), "error", err)
			continue
		}

		for _, cand := range found {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			score := 0.0
			if cand.Score != nil {
				score = *cand.Score
			} else {
				score = c.scorer.Score(q.Text, queryEmbedding, cand.Chunk, q.Language)
			}

			if score <= minRelevance {
				continue
			}
			if !matchesCategory(cand.Chunk.Category, q.Category) {
				continue
			}

			candidates = append(candidates, ranked{
				Result:      Result{Chunk: cand.Chunk, Score: score},
				sourceOrder: order,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].sourceOrder != candidates[j].sourceOrder {
			return candidates[i].sourceOrder < candidates[j].sourceOrder
		}
		return candidates[i].Chunk.ChunkIndex < candidates[j].Chunk.ChunkIndex
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, cand.Result)
	}

	return results, nil
}

func (c *Coordinator) embedQuery(ctx context.Context, text string) []float32 {
	if c.embedder == nil {
		return nil
	}

	embedding, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		c.log.Warn("query embedding failed, falling back to keyword scoring", "error", err)
		return nil
	}

	return embedding
}

// matchesCategory accepts an exact category match or a suffix match, so a
// coarse filter like "services" also selects "pdf_services".
func matchesCategory(category, filter string) bool {
	if filter == "" {
		return true
	}

	return category == filter || strings.HasSuffix(category, filter)
}
