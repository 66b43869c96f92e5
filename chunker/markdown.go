package chunker

import (
	"regexp"
	"strings"
)

// DefaultSectionTitle names sections that have no heading of their own:
// content before the first heading, or documents without headings at all.
const DefaultSectionTitle = "Document Content"

var headingLine = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Section is one heading-delimited region of a markdown document. Content
// includes the heading line itself.
type Section struct {
	Title   string
	Level   int
	Content string
}

// SplitMarkdown segments markdown text on heading boundaries instead of
// sentences: every heading starts a new section.
func SplitMarkdown(text string) []Section {
	var sections []Section
	current := Section{Title: DefaultSectionTitle, Level: 1}

	for _, line := range strings.Split(text, "\n") {
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			current.Content += line + "\n"
			continue
		}

		if strings.TrimSpace(current.Content) != "" {
			sections = append(sections, current)
		}

		current = Section{
			Title:   strings.TrimSpace(m[2]),
			Level:   len(m[1]),
			Content: line + "\n",
		}
	}

	if strings.TrimSpace(current.Content) != "" {
		sections = append(sections, current)
	}

	if len(sections) == 0 && strings.TrimSpace(text) != "" {
		sections = append(sections, Section{
			Title:   DefaultSectionTitle,
			Level:   1,
			Content: text,
		})
	}

	return sections
}
