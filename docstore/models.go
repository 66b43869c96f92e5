package docstore

import "time"

type SourceType string

const (
	SourcePDF      SourceType = "pdf"
	SourceMarkdown SourceType = "markdown"
	SourceText     SourceType = "text"
	SourceRecord   SourceType = "record"
)

// ChunkMeta carries auxiliary chunk attributes. The fixed fields cover
// everything the pipeline produces; Extra is an open extension map and is
// never required for correctness.
type ChunkMeta struct {
	Section      string            `json:"section,omitempty"`
	SectionTitle string            `json:"section_title,omitempty"`
	SectionLevel int               `json:"section_level,omitempty"`
	WordCount    int               `json:"word_count,omitempty"`
	CharCount    int               `json:"char_count,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// Chunk is a retrievable slice of a source document. Chunk ids are a
// deterministic function of (source document, position): re-processing the
// same file yields the same ids. Chunks never carry a relevance score; that
// annotation lives on the transient retrieval result only.
type Chunk struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	SourceFile string     `json:"source_file"`
	SourceType SourceType `json:"source_type"`
	PageNumber *int       `json:"page_number,omitempty"`
	ChunkIndex int        `json:"chunk_index"`
	Language   string     `json:"language"`
	Category   string     `json:"category"`
	Metadata   ChunkMeta  `json:"metadata"`
	Embedding  []float32  `json:"embedding,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// DocumentRecord is the index entry for an ingested document.
type DocumentRecord struct {
	Filename    string    `json:"filename"`
	FileType    string    `json:"file_type"`
	Category    string    `json:"category"`
	Language    string    `json:"language"`
	TotalChunks int       `json:"total_chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentChunks pairs a document id with its ordered chunk list, as
// returned by full-corpus scans.
type DocumentChunks struct {
	DocumentID string
	Chunks     []Chunk
}

// Stats summarizes the stored corpus.
type Stats struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	Categories     map[string]int `json:"categories"`
	Languages      map[string]int `json:"languages"`
	FileTypes      map[string]int `json:"file_types"`
	StorageBytes   int64          `json:"storage_bytes"`
}
