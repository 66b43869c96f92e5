package main

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/petroserv/rag-server/chunker"
	"github.com/petroserv/rag-server/docstore"
	"github.com/petroserv/rag-server/embedder"
	"github.com/petroserv/rag-server/lang"
	"github.com/petroserv/rag-server/readers"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
)

// Extractor converts raw uploaded bytes into plain text.
type Extractor interface {
	Extensions() []string
	Extract(filename string, content []byte) (readers.Extraction, error)
}

// Pipeline ingests uploaded documents: extract text, detect language,
// chunk, embed when a vector model is configured, and persist. A failed
// ingestion leaves no partial chunks behind.
type Pipeline struct {
	log             *slog.Logger
	store           *docstore.FileStore
	chunker         *chunker.SentenceChunker
	embedder        embedder.Embedder
	extractors      map[string]Extractor
	maxUploadBytes  int64
	defaultLanguage string
}

func NewPipeline(log *slog.Logger, store *docstore.FileStore, ch *chunker.SentenceChunker,
	emb embedder.Embedder, maxUploadBytes int64, defaultLanguage string, extractors ...Extractor) *Pipeline {

	byExt := make(map[string]Extractor)
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			byExt[ext] = e
		}
	}

	return &Pipeline{
		log:             log,
		store:           store,
		chunker:         ch,
		embedder:        emb,
		extractors:      byExt,
		maxUploadBytes:  maxUploadBytes,
		defaultLanguage: defaultLanguage,
	}
}

var pageMarker = regexp.MustCompile(`\[Page (\d+)\]`)

// Upload processes one document and returns its id and index record.
// Passing lang.Auto (or an empty language) triggers language detection.
func (p *Pipeline) Upload(ctx context.Context, filename string, content []byte, category, language string) (string, docstore.DocumentRecord, error) {
	if int64(len(content)) > p.maxUploadBytes {
		return "", docstore.DocumentRecord{}, fmt.Errorf("%s: %w", filename, ErrFileTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text       string
		pages      int
		sourceType docstore.SourceType
	)

	switch ext {
	case ".md", ".markdown":
		if !utf8.Valid(content) {
			return "", docstore.DocumentRecord{}, fmt.Errorf("file %s is not valid UTF-8 text", filename)
		}
		text = string(content)
		pages = 1
		sourceType = docstore.SourceMarkdown
	default:
		extractor, ok := p.extractors[ext]
		if !ok {
			return "", docstore.DocumentRecord{}, fmt.Errorf("%s (%s): %w", filename, ext, ErrUnsupportedType)
		}

		res, err := extractor.Extract(filename, content)
		if err != nil {
			return "", docstore.DocumentRecord{}, fmt.Errorf("failed to extract text from %s: %w", filename, err)
		}

		text = res.Text
		pages = res.Pages
		sourceType = docstore.SourceText
		if ext == ".pdf" {
			sourceType = docstore.SourcePDF
		}
	}

	if language == "" || language == lang.Auto || !lang.Supported(language) {
		language = lang.Detect(text)
	}

	documentID := documentID(filename)

	var chunks []docstore.Chunk
	if sourceType == docstore.SourceMarkdown {
		chunks = p.markdownChunks(documentID, filename, text, category, language)
	} else {
		chunks = p.textChunks(documentID, filename, text, sourceType, category, language)
	}

	if len(chunks) == 0 {
		return "", docstore.DocumentRecord{}, fmt.Errorf("document %s produced no text", filename)
	}

	p.embedChunks(ctx, chunks)

	record := docstore.DocumentRecord{
		Filename:    filename,
		FileType:    string(sourceType),
		Category:    category,
		Language:    language,
		TotalChunks: len(chunks),
		CreatedAt:   time.Now().UTC(),
	}

	if err := p.store.Put(ctx, documentID, record, chunks); err != nil {
		return "", docstore.DocumentRecord{}, err
	}

	p.log.Info("document processed",
		"document_id", documentID, "filename", filename,
		"chunks", len(chunks), "pages", pages, "language", language)

	return documentID, record, nil
}

// Delete removes a document and its chunks. Unknown ids report
// docstore.ErrNotFound.
func (p *Pipeline) Delete(ctx context.Context, documentID string) error {
	if !p.store.Contains(documentID) {
		return fmt.Errorf("document %s: %w", documentID, docstore.ErrNotFound)
	}

	return p.store.Delete(ctx, documentID)
}

func (p *Pipeline) textChunks(documentID, filename, text string, sourceType docstore.SourceType, category, language string) []docstore.Chunk {
	contents := p.chunker.Split(text)
	now := time.Now().UTC()

	chunks := make([]docstore.Chunk, 0, len(contents))
	page := 1
	for i, content := range contents {
		chunk := docstore.Chunk{
			ID:         chunkID(documentID, i),
			Content:    content,
			SourceFile: filename,
			SourceType: sourceType,
			ChunkIndex: i,
			Language:   language,
			Category:   category,
			Metadata: docstore.ChunkMeta{
				WordCount: len(strings.Fields(content)),
				CharCount: utf8.RuneCountInString(content),
			},
			CreatedAt: now,
		}

		if sourceType == docstore.SourcePDF {
			pg := page
			chunk.PageNumber = &pg
			if markers := pageMarker.FindAllStringSubmatch(content, -1); len(markers) > 0 {
				if n, err := strconv.Atoi(markers[len(markers)-1][1]); err == nil {
					page = n
				}
			}
		}

		chunks = append(chunks, chunk)
	}

	return chunks
}

func (p *Pipeline) markdownChunks(documentID, filename, text, category, language string) []docstore.Chunk {
	sections := chunker.SplitMarkdown(text)
	now := time.Now().UTC()

	chunks := make([]docstore.Chunk, 0, len(sections))
	for i, section := range sections {
		content := strings.TrimSpace(section.Content)
		if content == "" {
			continue
		}

		chunks = append(chunks, docstore.Chunk{
			ID:         chunkID(documentID, i),
			Content:    content,
			SourceFile: filename,
			SourceType: docstore.SourceMarkdown,
			ChunkIndex: i,
			Language:   language,
			Category:   category,
			Metadata: docstore.ChunkMeta{
				SectionTitle: section.Title,
				SectionLevel: section.Level,
				WordCount:    len(strings.Fields(content)),
			},
			CreatedAt: now,
		})
	}

	return chunks
}

// embedChunks attaches embeddings when a vector model is configured.
// Embedding failure is a degraded mode, not an ingestion failure: the
// chunks stay searchable through keyword scoring.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []docstore.Chunk) {
	if p.embedder == nil {
		return
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		p.log.Warn("failed to generate embeddings, continuing without them", "error", err)
		return
	}
	if len(vectors) != len(chunks) {
		p.log.Warn("embedding count mismatch, continuing without embeddings",
			"chunks", len(chunks), "vectors", len(vectors))
		return
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
}

func documentID(filename string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(filename)))
}

func chunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}
