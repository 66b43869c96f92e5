package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var ErrNotFound = errors.New("document not found")

const (
	chunksSuffix = "_chunks.json"
	indexFile    = "documents_index.json"
)

// FileStore persists one JSON chunk file per document plus a document index.
// Writes go through a temp file and an atomic rename so a concurrent scan
// never observes a half-written file. Writes to the same document id are
// serialized by a per-document lock; last writer wins.
type FileStore struct {
	log       *slog.Logger
	chunksDir string
	indexDir  string

	mu    sync.RWMutex
	index map[string]DocumentRecord

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

type indexPayload struct {
	Documents   map[string]DocumentRecord `json:"documents"`
	LastUpdated time.Time                 `json:"last_updated"`
}

func NewFileStore(dataDir string, log *slog.Logger) (*FileStore, error) {
	fs := &FileStore{
		log:       log,
		chunksDir: filepath.Join(dataDir, "embeddings"),
		indexDir:  filepath.Join(dataDir, "processed"),
		index:     make(map[string]DocumentRecord),
		locks:     make(map[string]*sync.Mutex),
	}

	for _, dir := range []string{fs.chunksDir, fs.indexDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}

	if err := fs.loadIndex(); err != nil {
		return nil, err
	}

	return fs, nil
}

func (fs *FileStore) loadIndex() error {
	buf, err := os.ReadFile(filepath.Join(fs.indexDir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read document index: %w", err)
	}

	var payload indexPayload
	if err := json.Unmarshal(buf, &payload); err != nil {
		// A damaged index is rebuilt over time by subsequent puts; do not
		// refuse to start over it.
		fs.log.Warn("document index unreadable, starting with an empty index", "error", err)
		return nil
	}

	if payload.Documents != nil {
		fs.index = payload.Documents
	}

	return nil
}

// Put atomically replaces all chunks for a document and its index entry.
func (fs *FileStore) Put(ctx context.Context, documentID string, record DocumentRecord, chunks []Chunk) error {
	if documentID == "" {
		return errors.New("empty document id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := fs.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	if err := fs.writeJSON(fs.chunksPath(documentID), chunks); err != nil {
		return fmt.Errorf("failed to write chunks for document %s: %w", documentID, err)
	}

	fs.mu.Lock()
	fs.index[documentID] = record
	err := fs.saveIndexLocked()
	fs.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to update document index: %w", err)
	}

	return nil
}

// Get returns the ordered chunk list for a document, or ErrNotFound.
func (fs *FileStore) Get(ctx context.Context, documentID string) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(fs.chunksPath(documentID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks for document %s: %w", documentID, err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(buf, &chunks); err != nil {
		return nil, fmt.Errorf("corrupt chunk file for document %s: %w", documentID, err)
	}

	return chunks, nil
}

// Delete removes a document's chunks and index entry. Deleting an absent
// document is not an error.
func (fs *FileStore) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := fs.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(fs.chunksPath(documentID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove chunks for document %s: %w", documentID, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.index[documentID]; !ok {
		return nil
	}

	delete(fs.index, documentID)
	if err := fs.saveIndexLocked(); err != nil {
		return fmt.Errorf("failed to update document index: %w", err)
	}

	return nil
}

// All scans every persisted chunk file. A malformed file is logged and
// skipped so one bad document cannot blank out results for the rest.
func (fs *FileStore) All(ctx context.Context) ([]DocumentChunks, error) {
	paths, err := filepath.Glob(filepath.Join(fs.chunksDir, "*"+chunksSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk files: %w", err)
	}
	sort.Strings(paths)

	docs := make([]DocumentChunks, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf, err := os.ReadFile(path)
		if err != nil {
			fs.log.Warn("skipping unreadable chunk file", "file", path, "error", err)
			continue
		}

		var chunks []Chunk
		if err := json.Unmarshal(buf, &chunks); err != nil {
			fs.log.Warn("skipping corrupt chunk file", "file", path, "error", err)
			continue
		}

		docs = append(docs, DocumentChunks{
			DocumentID: strings.TrimSuffix(filepath.Base(path), chunksSuffix),
			Chunks:     chunks,
		})
	}

	return docs, nil
}

// Index returns a copy of the current document index.
func (fs *FileStore) Index() map[string]DocumentRecord {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make(map[string]DocumentRecord, len(fs.index))
	for id, rec := range fs.index {
		out[id] = rec
	}

	return out
}

// Contains reports whether a document id is present in the index.
func (fs *FileStore) Contains(documentID string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.index[documentID]
	return ok
}

// Stats aggregates corpus totals from the index and chunk file sizes.
func (fs *FileStore) Stats() Stats {
	fs.mu.RLock()
	stats := Stats{
		TotalDocuments: len(fs.index),
		Categories:     make(map[string]int),
		Languages:      make(map[string]int),
		FileTypes:      make(map[string]int),
	}
	for _, rec := range fs.index {
		stats.TotalChunks += rec.TotalChunks
		stats.Categories[rec.Category]++
		stats.Languages[rec.Language]++
		stats.FileTypes[rec.FileType]++
	}
	fs.mu.RUnlock()

	paths, err := filepath.Glob(filepath.Join(fs.chunksDir, "*"+chunksSuffix))
	if err != nil {
		return stats
	}
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			stats.StorageBytes += info.Size()
		}
	}

	return stats
}

func (fs *FileStore) chunksPath(documentID string) string {
	return filepath.Join(fs.chunksDir, documentID+chunksSuffix)
}

func (fs *FileStore) docLock(documentID string) *sync.Mutex {
	fs.locksMu.Lock()
	defer fs.locksMu.Unlock()

	lock, ok := fs.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		fs.locks[documentID] = lock
	}

	return lock
}

// saveIndexLocked writes the index file; callers hold fs.mu.
func (fs *FileStore) saveIndexLocked() error {
	payload := indexPayload{
		Documents:   fs.index,
		LastUpdated: time.Now().UTC(),
	}

	return fs.writeJSON(filepath.Join(fs.indexDir, indexFile), payload)
}

// writeJSON writes v to path via a temp file and an atomic rename.
func (fs *FileStore) writeJSON(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode json: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
