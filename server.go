package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/petroserv/rag-server/docstore"
	"github.com/petroserv/rag-server/lang"
	"github.com/petroserv/rag-server/retrieval"
)

type docRetriever interface {
	Retrieve(ctx context.Context, q retrieval.Query) ([]retrieval.Result, error)
}

type docIngester interface {
	Upload(ctx context.Context, filename string, content []byte, category, language string) (string, docstore.DocumentRecord, error)
	Delete(ctx context.Context, documentID string) error
}

type docIndexer interface {
	Index() map[string]docstore.DocumentRecord
	Stats() docstore.Stats
}

// NewRagServer exposes retrieval and ingestion as MCP tools.
func NewRagServer(retriever docRetriever, ingester docIngester, indexer docIndexer, generator Generator, caps Capabilities) *server.MCPServer {
	srv := server.NewMCPServer("RAG", "1.0.0", server.WithToolCapabilities(false))

	searchTool := mcp.NewTool("search_documents",
		mcp.WithDescription("Search the document knowledge base and return ranked chunks"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithString("language",
			mcp.Description("Query language (en, ar, fr); detected from the query when omitted"),
		),
		mcp.WithString("category",
			mcp.Description("Category filter; matches exact categories or suffixes, e.g. 'services' matches 'pdf_services'"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results"),
		),
		mcp.WithNumber("min_relevance",
			mcp.Description("Relevance floor; results scoring at or below it are dropped"),
		))
	srv.AddTool(searchTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		language := request.GetString("language", "")
		if language == "" {
			language = lang.Detect(q)
		}

		query := retrieval.Query{
			Text:       q,
			Language:   language,
			Category:   request.GetString("category", ""),
			MaxResults: request.GetInt("max_results", 0),
		}
		if min := request.GetFloat("min_relevance", -1); min >= 0 {
			query.MinRelevance = &min
		}

		res, err := retriever.Retrieve(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var response string
		for _, r := range res {
			raw, err := json.Marshal(struct {
				Score    float64 `json:"score"`
				File     string  `json:"file"`
				Category string  `json:"category"`
				Language string  `json:"language"`
				Text     string  `json:"text"`
			}{
				Score:    r.Score,
				File:     r.Chunk.SourceFile,
				Category: r.Chunk.Category,
				Language: r.Chunk.Language,
				Text:     r.Chunk.Content,
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			response += fmt.Sprintf("%s\n", string(raw))
		}

		return mcp.NewToolResultText(response), nil
	})

	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Answer a question using the document knowledge base, with sources and a confidence estimate"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to answer"),
		),
		mcp.WithString("language",
			mcp.Description("Response language (en, ar, fr); detected from the question when omitted"),
		))
	srv.AddTool(askTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		language := request.GetString("language", "")
		if language == "" {
			language = lang.Detect(question)
		}

		results, err := retriever.Retrieve(ctx, retrieval.Query{Text: question, Language: language})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		answer, err := generator.Generate(ctx, question, language, results)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		type source struct {
			Filename  string  `json:"filename"`
			Type      string  `json:"type"`
			Relevance float64 `json:"relevance"`
		}
		sources := make([]source, 0, len(results))
		for _, r := range results {
			sources = append(sources, source{
				Filename:  r.Chunk.SourceFile,
				Type:      string(r.Chunk.SourceType),
				Relevance: r.Score,
			})
		}

		raw, err := json.Marshal(struct {
			Answer      string   `json:"answer"`
			Language    string   `json:"language"`
			Confidence  float64  `json:"confidence"`
			ContextUsed bool     `json:"context_used"`
			Sources     []source `json:"sources"`
		}{
			Answer:      answer,
			Language:    language,
			Confidence:  retrieval.EstimateConfidence(results),
			ContextUsed: len(results) > 0,
			Sources:     sources,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	})

	uploadTool := mcp.NewTool("upload_document",
		mcp.WithDescription("Ingest a document file (pdf, docx, odt, xml, txt, md) into the knowledge base"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file to ingest"),
		),
		mcp.WithString("category",
			mcp.Description("Document category"),
		),
		mcp.WithString("language",
			mcp.Description("Document language; detected from the content when omitted"),
		))
	srv.AddTool(uploadTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		id, record, err := ingester.Upload(ctx, filepath.Base(path), content,
			request.GetString("category", "general"), request.GetString("language", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		raw, err := json.Marshal(struct {
			DocumentID string `json:"document_id"`
			Filename   string `json:"filename"`
			FileType   string `json:"file_type"`
			Chunks     int    `json:"chunks"`
			Language   string `json:"language"`
		}{
			DocumentID: id,
			Filename:   record.Filename,
			FileType:   record.FileType,
			Chunks:     record.TotalChunks,
			Language:   record.Language,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	})

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List all documents in the knowledge base"))
	srv.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.MarshalIndent(indexer.Index(), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	})

	deleteTool := mcp.NewTool("delete_document",
		mcp.WithDescription("Remove a document and its chunks from the knowledge base"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Id of the document to delete"),
		))
	srv.AddTool(deleteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("document_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := ingester.Delete(ctx, id); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("document %s not found", id)), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("document %s deleted", id)), nil
	})

	statsTool := mcp.NewTool("document_stats",
		mcp.WithDescription("Summarize the stored corpus: document and chunk counts by category, language and file type"))
	srv.AddTool(statsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := statsReport(indexer, caps)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	})

	return srv
}

// statsReport pairs the corpus summary with the server's configured
// capabilities, so clients can tell keyword-only mode from vector mode.
func statsReport(indexer docIndexer, caps Capabilities) ([]byte, error) {
	return json.MarshalIndent(struct {
		docstore.Stats
		Capabilities Capabilities `json:"capabilities"`
	}{
		Stats:        indexer.Stats(),
		Capabilities: caps,
	}, "", "  ")
}
