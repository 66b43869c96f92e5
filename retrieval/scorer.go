// Package retrieval scores document chunks against a query and merges
// candidates from multiple sources into a single ranked list.
package retrieval

import (
	"math"
	"sort"
	"strings"

	"github.com/petroserv/rag-server/docstore"
)

// BoostConfig holds the keyword-strategy boost multipliers. The values are
// empirical; they are configuration, not law.
type BoostConfig struct {
	Language         float64
	Category         float64
	CategoryKeywords map[string][]string
}

func DefaultBoosts() BoostConfig {
	return BoostConfig{
		Language: 1.2,
		Category: 1.3,
		CategoryKeywords: map[string][]string{
			"petroleum_services": {"drilling", "petroleum", "oil", "gas"},
			"training_services":  {"training", "course", "certification"},
		},
	}
}

// Scorer rates a (query, chunk) pair. When both the query and the chunk have
// an embedding it uses cosine similarity; otherwise it falls back to keyword
// overlap with language and category boosts. Boosted scores may exceed 1.0;
// scores are only compared within a single query, never across queries.
type Scorer struct {
	boosts BoostConfig
}

func NewScorer(boosts BoostConfig) *Scorer {
	return &Scorer{boosts: boosts}
}

func (s *Scorer) Score(query string, queryEmbedding []float32, chunk docstore.Chunk, language string) float64 {
	if queryEmbedding != nil && chunk.Embedding != nil {
		return Cosine(queryEmbedding, chunk.Embedding)
	}

	return s.keywordScore(query, chunk, language)
}

func (s *Scorer) keywordScore(query string, chunk docstore.Chunk, language string) float64 {
	score := Jaccard(query, chunk.Content)

	if language != "" && chunk.Language == language {
		score *= s.boosts.Language
	}

	queryLower := strings.ToLower(query)
	for _, category := range sortedKeys(s.boosts.CategoryKeywords) {
		if chunk.Category != category && !strings.HasSuffix(chunk.Category, category) {
			continue
		}
		for _, kw := range s.boosts.CategoryKeywords[category] {
			if strings.Contains(queryLower, kw) {
				score *= s.boosts.Category
				break
			}
		}
		break
	}

	return score
}

// Jaccard computes word-set overlap between two texts: the size of the
// intersection of their lowercase token sets over the size of the union.
// Always in [0, 1]; 0 when the union is empty.
func Jaccard(a, b string) float64 {
	aWords := tokenSet(a)
	bWords := tokenSet(b)

	intersection := 0
	for w := range aWords {
		if _, ok := bWords[w]; ok {
			intersection++
		}
	}

	union := len(aWords) + len(bWords) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// Cosine computes cos(a, b); 0 when either vector has zero norm.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func tokenSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}
