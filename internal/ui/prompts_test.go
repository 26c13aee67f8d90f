package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectURLs(t *testing.T) {
	Init(true)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "blank first line exits",
			input: "\n",
			want:  nil,
		},
		{
			name:  "exit keyword quits",
			input: "exit\n",
			want:  nil,
		},
		{
			name:  "exit is case insensitive",
			input: "EXIT\n",
			want:  nil,
		},
		{
			name:  "single url then blank processes",
			input: "https://example.com/a.pdf\n\n",
			want:  []string{"https://example.com/a.pdf"},
		},
		{
			name:  "multiple urls preserve order",
			input: "https://example.com/a.pdf\nhttps://example.com/b.pdf\n\n",
			want:  []string{"https://example.com/a.pdf", "https://example.com/b.pdf"},
		},
		{
			name:  "invalid url is rejected and skipped",
			input: "https://example.com/a.pdf\nnot-a-url\nhttps://example.com/b.pdf\n\n",
			want:  []string{"https://example.com/a.pdf", "https://example.com/b.pdf"},
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  https://example.com/a.pdf  \n\n",
			want:  []string{"https://example.com/a.pdf"},
		},
		{
			name:  "eof ends collection",
			input: "https://example.com/a.pdf\n",
			want:  []string{"https://example.com/a.pdf"},
		},
		{
			name:  "exit after urls discards them",
			input: "https://example.com/a.pdf\nexit\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectURLs(strings.NewReader(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}
