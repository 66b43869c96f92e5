// Package readers turns raw uploaded bytes into plain text.
package readers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"code.sajari.com/docconv/v2"
)

// Extraction is the plain-text result of converting an uploaded document.
type Extraction struct {
	Text  string
	Pages int
}

// UniversalReader extracts text from binary document formats via docconv.
type UniversalReader struct{}

func (r *UniversalReader) Extensions() []string {
	return []string{".pdf", ".docx", ".odt", ".xml"}
}

func (r *UniversalReader) Extract(filename string, content []byte) (Extraction, error) {
	res, err := docconv.Convert(bytes.NewReader(content), docconv.MimeTypeByExtension(filename), true)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}

	if filepath.Ext(strings.ToLower(filename)) == ".pdf" {
		return paginate(res), nil
	}

	return Extraction{Text: res.Body, Pages: 1}, nil
}

// paginate rewrites pdftotext's form-feed page breaks into [Page N] markers
// and derives the page count, preferring the converter's own metadata.
func paginate(res *docconv.Response) Extraction {
	pages := strings.Split(res.Body, "\f")

	var sb strings.Builder
	n := 0
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "[Page %d]\n%s\n", n, strings.TrimSpace(page))
	}

	total := len(pages)
	if meta, ok := res.Meta["Pages"]; ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(meta)); err == nil && parsed > 0 {
			total = parsed
		}
	}

	return Extraction{Text: sb.String(), Pages: total}
}
