package readers

import (
	"fmt"
	"unicode/utf8"
)

// TextReader handles plain-text uploads.
type TextReader struct{}

func (r *TextReader) Extensions() []string {
	return []string{".txt"}
}

func (r *TextReader) Extract(filename string, content []byte) (Extraction, error) {
	if !utf8.Valid(content) {
		return Extraction{}, fmt.Errorf("file %s is not valid UTF-8 text", filename)
	}

	return Extraction{Text: string(content), Pages: 1}, nil
}
