// Package lang detects the language of document text using lightweight
// script and stopword heuristics. Supported tags: en, ar, fr.
package lang

import "strings"

const (
	English = "en"
	Arabic  = "ar"
	French  = "fr"

	// Auto asks the ingestion pipeline to detect the language itself.
	Auto = "auto"
)

// Supported reports whether tag is one of the supported language tags.
func Supported(tag string) bool {
	return tag == English || tag == Arabic || tag == French
}

const sampleRunes = 1000

var frenchStopwords = []string{
	"le", "la", "des", "une", "avec", "pour", "dans", "sur", "est", "sont",
}

// Detect classifies text by sampling its first characters: a run of Arabic
// script wins first, then common French stopwords; English is the default.
func Detect(text string) string {
	sample := strings.ToLower(firstRunes(text, sampleRunes))

	arabic := 0
	for _, r := range sample {
		if r >= 0x0600 && r <= 0x06FF {
			arabic++
		}
	}
	if arabic > 10 {
		return Arabic
	}

	french := 0
	for _, word := range frenchStopwords {
		if strings.Contains(sample, word) {
			french++
		}
	}
	if french > 3 {
		return French
	}

	return English
}

func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}

	return s
}
