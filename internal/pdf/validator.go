package pdf

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// ValidateURL validates that a user-supplied string is an HTTP(S) URL
// pointing at a PDF. Rejections are re-promptable, never fatal.
func ValidateURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.ValidationError("URL cannot be empty", nil)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("invalid URL: %s", trimmed), err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.ValidationError(fmt.Sprintf("URL must use http or https: %s", trimmed), nil)
	}

	if !strings.HasSuffix(strings.ToLower(trimmed), ".pdf") {
		return domain.ValidationError(fmt.Sprintf("URL must end with .pdf: %s", trimmed), nil)
	}

	return nil
}
