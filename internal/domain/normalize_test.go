package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  tell  ", want: "tell"},
		{name: "lowercase", input: "Hello World", want: "hello world"},
		{name: "compress multiple spaces", input: "give   up", want: "give up"},
		{name: "diacritics preserved", input: "Café", want: "café"},
		{name: "hyphens preserved", input: "well-known", want: "well-known"},
		{name: "apostrophes preserved", input: "don't", want: "don't"},
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "   ", want: ""},
		{name: "tabs and spaces", input: "\t tell \t", want: "tell"},
		{name: "single word", input: "ABANDON", want: "abandon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDedupStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c"}, DedupStrings([]string{"a", "b", "a", "", "c"}, 0))
	assert.Equal(t, []string{"a", "b"}, DedupStrings([]string{"a", " b ", "b", "c"}, 2))
	assert.Empty(t, DedupStrings(nil, 4))
}
