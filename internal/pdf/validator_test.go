package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://example.com/doc.pdf", false},
		{"valid http", "http://example.com/doc.pdf", false},
		{"uppercase extension", "https://example.com/DOC.PDF", false},
		{"surrounding whitespace", "  https://example.com/doc.pdf  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"no scheme", "example.com/doc.pdf", true},
		{"ftp scheme", "ftp://example.com/doc.pdf", true},
		{"not a pdf", "https://example.com/doc.html", true},
		{"pdf in path but not suffix", "https://example.com/doc.pdf/view", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
