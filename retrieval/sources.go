package retrieval

import (
	"context"
	"fmt"

	"github.com/petroserv/rag-server/docstore"
)

// ChunkLister is the slice of the chunk store the coordinator needs.
type ChunkLister interface {
	All(ctx context.Context) ([]docstore.DocumentChunks, error)
}

// StoreSource adapts the persisted chunk store into a retrieval source.
type StoreSource struct {
	store ChunkLister
}

func NewStoreSource(store ChunkLister) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Name() string { return "docstore" }

func (s *StoreSource) Candidates(ctx context.Context) ([]Candidate, error) {
	docs, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunk store: %w", err)
	}

	var candidates []Candidate
	for _, doc := range docs {
		for _, chunk := range doc.Chunks {
			candidates = append(candidates, Candidate{Chunk: chunk})
		}
	}

	return candidates, nil
}
