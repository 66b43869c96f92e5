// Package chunker splits normalized document text into retrievable,
// overlapping segments.
package chunker

import (
	"errors"
	"regexp"
	"strings"
)

const (
	DefaultMaxChars = 1000
	DefaultOverlap  = 200
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// SentenceChunker accumulates whole sentences into chunks bounded by a
// character budget, seeding each new chunk with the tail of the previous one
// so context survives the boundary. A single sentence longer than the budget
// is emitted as its own oversized chunk; sentences are never split.
type SentenceChunker struct {
	maxChars int
	overlap  int
}

func NewSentenceChunker(maxChars, overlap int) (*SentenceChunker, error) {
	if maxChars <= 0 {
		return nil, errors.New("max chunk size must be positive")
	}
	if overlap < 0 || overlap >= maxChars {
		return nil, errors.New("overlap must be non-negative and smaller than the chunk size")
	}

	return &SentenceChunker{maxChars: maxChars, overlap: overlap}, nil
}

func (c *SentenceChunker) Split(text string) []string {
	var chunks []string
	var current []rune

	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		unit := []rune(sentence)
		if len(current)+len(unit) > c.maxChars && len(current) > 0 {
			chunks = append(chunks, string(current))

			seed := current
			if len(seed) > c.overlap {
				seed = seed[len(seed)-c.overlap:]
			}
			current = append(append([]rune{}, seed...), ' ')
			current = append(current, unit...)
			continue
		}

		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, unit...)
	}

	if trimmed := strings.TrimSpace(string(current)); trimmed != "" {
		chunks = append(chunks, trimmed)
	}

	for i, chunk := range chunks {
		chunks[i] = strings.TrimSpace(chunk)
	}

	return chunks
}
