package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SplitMarkdown(t *testing.T) {
	text := "intro text before any heading\n" +
		"# Services\n" +
		"drilling and workover\n" +
		"## Training\n" +
		"certification courses\n" +
		"### Empty\n"

	sections := SplitMarkdown(text)
	require.Len(t, sections, 4)

	assert.Equal(t, DefaultSectionTitle, sections[0].Title)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, "intro text before any heading", strings.TrimSpace(sections[0].Content))

	assert.Equal(t, "Services", sections[1].Title)
	assert.Equal(t, 1, sections[1].Level)
	assert.True(t, strings.HasPrefix(sections[1].Content, "# Services"))
	assert.Contains(t, sections[1].Content, "drilling and workover")

	assert.Equal(t, "Training", sections[2].Title)
	assert.Equal(t, 2, sections[2].Level)

	// A heading with no body still forms a section: its heading line is content.
	assert.Equal(t, "Empty", sections[3].Title)
	assert.Equal(t, 3, sections[3].Level)
}

func Test_SplitMarkdown_NoHeadings(t *testing.T) {
	sections := SplitMarkdown("just a plain paragraph\nwith two lines\n")
	require.Len(t, sections, 1)

	assert.Equal(t, DefaultSectionTitle, sections[0].Title)
	assert.Equal(t, 1, sections[0].Level)
	assert.Contains(t, sections[0].Content, "with two lines")
}

func Test_SplitMarkdown_Empty(t *testing.T) {
	assert.Empty(t, SplitMarkdown(""))
	assert.Empty(t, SplitMarkdown("   \n \t\n"))
}

func Test_SplitMarkdown_SevenHashesIsNotAHeading(t *testing.T) {
	sections := SplitMarkdown("####### not a heading\n")
	require.Len(t, sections, 1)
	assert.Equal(t, DefaultSectionTitle, sections[0].Title)
}
