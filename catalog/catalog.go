// Package catalog materializes retrieval chunks from structured service
// catalog files on demand. Catalog chunks are never persisted in the chunk
// store and carry no embeddings, so they are always keyword-scored.
package catalog

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petroserv/rag-server/docstore"
	"github.com/petroserv/rag-server/retrieval"
)

// catalogFile is one structured catalog document: a titled collection of
// keyed entries, each entry a description plus arbitrary attribute fields.
type catalogFile struct {
	Title    string                     `json:"title"`
	Language string                     `json:"language"`
	Version  string                     `json:"version"`
	Content  map[string]json.RawMessage `json:"content"`
}

// Source reads every *.json catalog file in a directory and turns each
// entry into a chunk. The category of a chunk is the file's base name, e.g.
// petroleum_services.json -> "petroleum_services".
type Source struct {
	log *slog.Logger
	dir string
}

func NewSource(dir string, log *slog.Logger) *Source {
	return &Source{log: log, dir: dir}
}

func (s *Source) Name() string { return "catalog" }

func (s *Source) Candidates(ctx context.Context) ([]retrieval.Candidate, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog files: %w", err)
	}
	sort.Strings(paths)

	var candidates []retrieval.Candidate
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunks, err := s.loadFile(path)
		if err != nil {
			s.log.Warn("skipping unreadable catalog file", "file", path, "error", err)
			continue
		}

		for _, chunk := range chunks {
			candidates = append(candidates, retrieval.Candidate{Chunk: chunk})
		}
	}

	return candidates, nil
}

func (s *Source) loadFile(path string) ([]docstore.Chunk, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file catalogFile
	if err := json.Unmarshal(buf, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	category := strings.TrimSuffix(filepath.Base(path), ".json")
	language := file.Language
	if language == "" {
		language = "en"
	}

	source := file.Title
	if source == "" {
		source = category
	}

	keys := make([]string, 0, len(file.Content))
	for key := range file.Content {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	chunks := make([]docstore.Chunk, 0, len(keys))
	for i, key := range keys {
		content := renderEntry(file.Content[key])
		if content == "" {
			continue
		}

		chunks = append(chunks, docstore.Chunk{
			ID:         entryID(category, key),
			Content:    content,
			SourceFile: source,
			SourceType: docstore.SourceRecord,
			ChunkIndex: i,
			Language:   language,
			Category:   category,
			Metadata: docstore.ChunkMeta{
				Section:   key,
				WordCount: len(strings.Fields(content)),
				Extra:     map[string]string{"version": file.Version},
			},
		})
	}

	return chunks, nil
}

// renderEntry flattens one catalog entry into searchable text: the
// description first, then each remaining field as "Field Title: value".
func renderEntry(raw json.RawMessage) string {
	var entry map[string]any
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Entries may also be bare strings.
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return ""
		}
		return text
	}

	var parts []string
	if desc, ok := entry["description"].(string); ok {
		parts = append(parts, "Description: "+desc)
	}

	fields := make([]string, 0, len(entry))
	for field := range entry {
		if field != "description" {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	for _, field := range fields {
		switch v := entry[field].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s: %s", fieldTitle(field), v))
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					items = append(items, s)
				}
			}
			if len(items) > 0 {
				parts = append(parts, fmt.Sprintf("%s: %s", fieldTitle(field), strings.Join(items, ", ")))
			}
		}
	}

	return strings.Join(parts, "\n")
}

func fieldTitle(field string) string {
	words := strings.Split(strings.ReplaceAll(field, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}

func entryID(category, key string) string {
	sum := md5.Sum([]byte(category + "_" + key))
	return fmt.Sprintf("%x", sum)[:8]
}
