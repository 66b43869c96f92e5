package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroserv/rag-server/docstore"
)

type fakeIndexer struct {
	stats docstore.Stats
}

func (f *fakeIndexer) Index() map[string]docstore.DocumentRecord { return nil }

func (f *fakeIndexer) Stats() docstore.Stats { return f.stats }

func Test_statsReport(t *testing.T) {
	indexer := &fakeIndexer{stats: docstore.Stats{
		TotalDocuments: 2,
		TotalChunks:    7,
		Categories:     map[string]int{"petroleum_services": 2},
		Languages:      map[string]int{"en": 2},
		FileTypes:      map[string]int{"pdf": 2},
	}}

	raw, err := statsReport(indexer, Capabilities{Extraction: true, Embedding: false})
	require.NoError(t, err)

	var report struct {
		TotalDocuments int            `json:"total_documents"`
		TotalChunks    int            `json:"total_chunks"`
		Categories     map[string]int `json:"categories"`
		Capabilities   struct {
			Extraction bool `json:"extraction"`
			Embedding  bool `json:"embedding"`
		} `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(raw, &report))

	assert.Equal(t, 2, report.TotalDocuments)
	assert.Equal(t, 7, report.TotalChunks)
	assert.Equal(t, 2, report.Categories["petroleum_services"])
	assert.True(t, report.Capabilities.Extraction)
	assert.False(t, report.Capabilities.Embedding)
}
