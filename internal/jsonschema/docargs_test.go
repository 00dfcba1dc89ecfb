package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDocArgs_GoogleStyle(t *testing.T) {
	doc := `Write content to a file.

Args:
    path: Destination path.
    content (str): Text to write,
        replacing any existing content.
    mode (str, optional): Ignored.

Returns:
    path: not a parameter.
`
	got := ParseDocArgs(doc)

	assert.Equal(t, map[string]string{
		"path":    "Destination path.",
		"content": "Text to write, replacing any existing content.",
		"mode":    "Ignored.",
	}, got)
}

func TestParseDocArgs_NoArgsSection(t *testing.T) {
	assert.Empty(t, ParseDocArgs("Just a summary line."))
	assert.Empty(t, ParseDocArgs(""))
}

func TestParseDocArgs_SectionEndsAtUnindentedLine(t *testing.T) {
	doc := "Args:\n  a: first\nTrailing prose: with a colon"
	assert.Equal(t, map[string]string{"a": "first"}, ParseDocArgs(doc))
}

func TestParseDocArgs_CaseInsensitiveHeader(t *testing.T) {
	doc := "Summary.\n\nargs:\n\tsituation: One of difficulty, conflict.\n\tthought: The thought."
	assert.Equal(t, map[string]string{
		"situation": "One of difficulty, conflict.",
		"thought":   "The thought.",
	}, ParseDocArgs(doc))
}
