package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TextReader_Extract(t *testing.T) {
	r := TextReader{}

	res, err := r.Extract("notes.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
	assert.Equal(t, 1, res.Pages)
}

func Test_TextReader_Extract_RejectsBinary(t *testing.T) {
	r := TextReader{}

	_, err := r.Extract("notes.txt", []byte{0xff, 0xfe, 0x00, 0x80})
	assert.Error(t, err)
}

func Test_Extensions(t *testing.T) {
	assert.Contains(t, (&TextReader{}).Extensions(), ".txt")

	u := (&UniversalReader{}).Extensions()
	assert.Contains(t, u, ".pdf")
	assert.Contains(t, u, ".docx")
	assert.Contains(t, u, ".odt")
	assert.Contains(t, u, ".xml")
}
