package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSentenceChunker(t *testing.T) {
	_, err := NewSentenceChunker(0, 0)
	assert.Error(t, err)

	_, err = NewSentenceChunker(100, 100)
	assert.Error(t, err)

	_, err = NewSentenceChunker(100, 200)
	assert.Error(t, err)

	_, err = NewSentenceChunker(100, 20)
	assert.NoError(t, err)
}

func Test_SentenceChunker_Split(t *testing.T) {
	var cases = []struct {
		input   string
		size    int
		overlap int
		output  []string
	}{
		{input: "", size: 10, overlap: 3, output: nil},
		{input: "   \n\t  ", size: 10, overlap: 3, output: nil},
		{input: "One. Two. Three.", size: 100, overlap: 10, output: []string{"One Two Three"}},
		{input: "One. Two. Three.", size: 10, overlap: 3, output: []string{"One Two", "Two Three"}},
		// A sentence longer than the budget is emitted whole.
		{input: "abcdefghij.", size: 5, overlap: 2, output: []string{"abcdefghij"}},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			ch, err := NewSentenceChunker(c.size, c.overlap)
			require.NoError(t, err)

			assert.Equal(t, c.output, ch.Split(c.input))
		})
	}
}

func Test_SentenceChunker_Split_OverlapSeed(t *testing.T) {
	ch, err := NewSentenceChunker(20, 5)
	require.NoError(t, err)

	chunks := ch.Split("first sentence here. second sentence here. third one.")
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := strings.TrimSpace(string(prev[len(prev)-5:]))
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d %q does not start with overlap %q", i, chunks[i], tail)
	}
}

func Test_SentenceChunker_Split_Coverage(t *testing.T) {
	text := "The drilling rig operates around the clock. Safety procedures are reviewed daily. " +
		"Each crew member completes certification training. Equipment maintenance follows a strict schedule. " +
		"Inspections are logged in the field report. The supervisor signs off every shift."

	ch, err := NewSentenceChunker(80, 20)
	require.NoError(t, err)

	chunks := ch.Split(text)
	require.NotEmpty(t, chunks)

	// No sentence may be dropped.
	joined := strings.Join(chunks, " ")
	for _, sentence := range strings.Split(text, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		assert.Contains(t, joined, sentence)
	}

	// Every chunk respects the budget unless it is a single oversized sentence.
	for _, chunk := range chunks {
		if len([]rune(chunk)) > 80 {
			assert.NotContains(t, strings.TrimRight(chunk, "."), ". ")
		}
	}
}

func Test_SentenceChunker_Split_Deterministic(t *testing.T) {
	ch, err := NewSentenceChunker(50, 10)
	require.NoError(t, err)

	text := "Alpha bravo charlie. Delta echo foxtrot. Golf hotel india. Juliett kilo lima."
	assert.Equal(t, ch.Split(text), ch.Split(text))
}
