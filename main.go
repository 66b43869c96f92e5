package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/petroserv/rag-server/catalog"
	"github.com/petroserv/rag-server/chunker"
	"github.com/petroserv/rag-server/docstore"
	"github.com/petroserv/rag-server/embedder"
	"github.com/petroserv/rag-server/readers"
	"github.com/petroserv/rag-server/retrieval"
)

// Capabilities records which optional collaborators are configured. It is
// computed once at startup and threaded through as configuration instead
// of being probed at call time.
type Capabilities struct {
	Extraction bool `json:"extraction"`
	Embedding  bool `json:"embedding"`
}

// createEmbedder returns nil when no provider is configured: keyword-only
// scoring is a supported degraded mode, not an error.
func createEmbedder(cfg *Config) (embedder.Embedder, error) {
	if cfg.OpenAI != nil {
		emb, err := embedder.NewOpenAI(cfg.OpenAI.ApiKey, cfg.OpenAI.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedder: %w", err)
		}

		return emb, nil
	}

	if cfg.Gemini != nil {
		emb, err := embedder.NewGemini(cfg.Gemini.ApiKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedder: %w", err)
		}

		return emb, nil
	}

	return nil, nil
}

func main() {
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the RAG server")
	flag.Parse()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	emb, err := createEmbedder(cfg)
	if err != nil {
		log.Fatal(err)
	}

	caps := Capabilities{Extraction: true, Embedding: emb != nil}
	logger.Info("capabilities", "extraction", caps.Extraction, "embedding", caps.Embedding)

	store, err := docstore.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		log.Fatal(err)
	}

	ch, err := chunker.NewSentenceChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatal(err)
	}

	pipeline := NewPipeline(logger, store, ch, emb, cfg.MaxUploadBytes, cfg.DefaultLanguage,
		&readers.TextReader{}, &readers.UniversalReader{})

	scorer := retrieval.NewScorer(retrieval.BoostConfig{
		Language:         *cfg.LanguageBoost,
		Category:         *cfg.CategoryBoost,
		CategoryKeywords: cfg.CategoryKeywords,
	})

	// Structured-record sources rank before file-derived sources on ties.
	var sources []retrieval.Source
	if cfg.CatalogDir != "" {
		sources = append(sources, catalog.NewSource(cfg.CatalogDir, logger))
	}
	sources = append(sources, retrieval.NewStoreSource(store))

	coordinator := retrieval.NewCoordinator(logger, scorer, emb, *cfg.MinRelevance, cfg.Results, sources...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.InboxDir != "" {
		watcher := NewWatcher(logger, pipeline, cfg.InboxDir, cfg.InboxCategory,
			time.Duration(cfg.MergeEventsMs)*time.Millisecond)
		go func() {
			if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
				log.Fatal(err)
			}
		}()
	}

	srv := NewRagServer(coordinator, pipeline, store, &TemplateGenerator{}, caps)
	sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))
	log.Println(sse.Start(cfg.ServerAddr))
}
