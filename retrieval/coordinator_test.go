package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroserv/rag-server/docstore"
)

type fakeSource struct {
	name   string
	chunks []docstore.Chunk
	err    error
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Candidates(ctx context.Context) ([]Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}

	out := make([]Candidate, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, Candidate{Chunk: c})
	}

	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scenarioChunks() []docstore.Chunk {
	return []docstore.Chunk{
		{ID: "a", Content: "drilling rig safety procedures", Category: "petroleum_services", Language: "en", ChunkIndex: 0},
		{ID: "b", Content: "python programming course outline", Category: "training_services", Language: "en", ChunkIndex: 1},
		{ID: "c", Content: "drilling equipment maintenance schedule", Category: "petroleum_services", Language: "en", ChunkIndex: 2},
	}
}

func Test_Coordinator_Retrieve_RanksByRelevance(t *testing.T) {
	src := &fakeSource{name: "test", chunks: scenarioChunks()}
	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5, src)

	results, err := coord.Retrieve(context.Background(), Query{
		Text:       "drilling safety",
		Language:   "en",
		MaxResults: 2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// A beats C on word overlap; B falls under the relevance floor.
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "c", results[1].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)

	// Both carry the petroleum category boost.
	assert.InDelta(t, 0.78, results[0].Score, 1e-9)
	assert.InDelta(t, 0.312, results[1].Score, 1e-9)
}

func Test_Coordinator_Retrieve_CategoryFilter(t *testing.T) {
	chunks := []docstore.Chunk{
		{ID: "pdf", Content: "drilling safety", Category: "pdf_services", Language: "en"},
		{ID: "train", Content: "drilling safety", Category: "training", Language: "en"},
	}
	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5,
		&fakeSource{name: "test", chunks: chunks})

	results, err := coord.Retrieve(context.Background(), Query{
		Text:     "drilling safety",
		Language: "en",
		Category: "services",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pdf", results[0].Chunk.ID)
}

func Test_Coordinator_Retrieve_TieBreakIsDeterministic(t *testing.T) {
	first := &fakeSource{name: "records", chunks: []docstore.Chunk{
		{ID: "r1", Content: "drilling safety", Category: "faq", Language: "en", ChunkIndex: 4},
	}}
	second := &fakeSource{name: "files", chunks: []docstore.Chunk{
		{ID: "f2", Content: "drilling safety", Category: "faq", Language: "en", ChunkIndex: 2},
		{ID: "f1", Content: "drilling safety", Category: "faq", Language: "en", ChunkIndex: 1},
	}}

	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5, first, second)

	q := Query{Text: "drilling safety", Language: "en"}
	results, err := coord.Retrieve(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Equal scores: source registration order first, then chunk position.
	assert.Equal(t, "r1", results[0].Chunk.ID)
	assert.Equal(t, "f1", results[1].Chunk.ID)
	assert.Equal(t, "f2", results[2].Chunk.ID)

	again, err := coord.Retrieve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func Test_Coordinator_Retrieve_FailingSourceDegrades(t *testing.T) {
	broken := &fakeSource{name: "broken", err: errors.New("connection refused")}
	healthy := &fakeSource{name: "healthy", chunks: scenarioChunks()}

	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5, broken, healthy)

	results, err := coord.Retrieve(context.Background(), Query{Text: "drilling safety", Language: "en"})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func Test_Coordinator_Retrieve_KeywordOnlyCorpus(t *testing.T) {
	// No chunk has an embedding and no embedder is configured: retrieval
	// still ranks correctly through the keyword strategy.
	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5,
		&fakeSource{name: "test", chunks: scenarioChunks()})

	results, err := coord.Retrieve(context.Background(), Query{Text: "drilling safety", Language: "en"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func Test_Coordinator_Retrieve_RelevanceFloor(t *testing.T) {
	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.99, 5,
		&fakeSource{name: "test", chunks: scenarioChunks()})

	results, err := coord.Retrieve(context.Background(), Query{Text: "drilling safety", Language: "en"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func Test_Coordinator_Retrieve_PerQueryFloorOverridesDefault(t *testing.T) {
	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5,
		&fakeSource{name: "test", chunks: scenarioChunks()})

	// A scores 0.78 and C scores 0.312; a 0.5 floor keeps only A.
	floor := 0.5
	results, err := coord.Retrieve(context.Background(), Query{
		Text: "drilling safety", Language: "en", MinRelevance: &floor,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.ID)
}

func Test_Coordinator_Retrieve_PrecomputedScoreKept(t *testing.T) {
	score := 0.9
	src := &presetSource{cands: []Candidate{
		{Chunk: docstore.Chunk{ID: "pre", Content: "unrelated"}, Score: &score},
	}}

	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5, src)

	results, err := coord.Retrieve(context.Background(), Query{Text: "drilling safety", Language: "en"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
}

type presetSource struct {
	cands []Candidate
}

func (s *presetSource) Name() string { return "preset" }

func (s *presetSource) Candidates(ctx context.Context) ([]Candidate, error) {
	return s.cands, nil
}

func Test_Coordinator_Retrieve_Cancelled(t *testing.T) {
	coord := NewCoordinator(discardLogger(), NewScorer(DefaultBoosts()), nil, 0.2, 5,
		&fakeSource{name: "test", chunks: scenarioChunks()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coord.Retrieve(ctx, Query{Text: "drilling safety", Language: "en"})
	assert.ErrorIs(t, err, context.Canceled)
}
