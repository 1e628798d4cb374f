package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text",
			input:    "Hello world",
			expected: "Hello world\n",
		},
		{
			name:     "bold text",
			input:    "**bold**",
			expected: "<strong>bold</strong>\n",
		},
		{
			name:     "italic text",
			input:    "*italic*",
			expected: "<em>italic</em>\n",
		},
		{
			name:     "strikethrough",
			input:    "~~gone~~",
			expected: "<del>gone</del>\n",
		},
		{
			name:     "script is dropped",
			input:    "<script>alert(1)</script>ok",
			expected: "ok\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MarkdownToTelegramHTML([]byte(tt.input)))
		})
	}
}

func TestMarkdownToHTML(t *testing.T) {
	out := MarkdownToHTML("I found 2 relevant tasks:\n\n- **Essay** due Friday\n- Lab report")

	assert.Contains(t, out, "<strong>Essay</strong>")
	assert.Contains(t, out, "<li>")
	assert.Equal(t, "", MarkdownToHTML("   "))
	assert.NotContains(t, MarkdownToHTML("<img src=x onerror=alert(1)>"), "onerror")
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "show my tasks", want: "show my tasks"},
		{name: "tags stripped", input: "<b>show</b> my <i>tasks</i>", want: "show my tasks"},
		{name: "whitespace collapsed", input: "  what about\n\ttomorrow  ", want: "what about tomorrow"},
		{name: "entities decoded", input: "Q&amp;A session", want: "Q&A session"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.input))
		})
	}
}
