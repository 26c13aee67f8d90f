package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// browserUserAgent is sent on every download. Several government and NGO
// document hosts reject requests without a browser-like UA.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/115.0.0.0 Safari/537.36"

// HTTPFetcher downloads PDFs over HTTP into temp files.
type HTTPFetcher struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPFetcher creates a fetcher with a bounded request timeout.
func NewHTTPFetcher(timeout time.Duration, logger zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch downloads url to a temp file and returns the local path. Any
// non-2xx status is a download failure, not an exception path. The caller
// owns the returned file and removes it when done.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", domain.DownloadError(fmt.Sprintf("invalid request for %s", url), err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", domain.TimeoutError(fmt.Sprintf("download of %s timed out", url), err)
		}
		return "", domain.DownloadError(fmt.Sprintf("failed to download %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.DownloadError(fmt.Sprintf("download of %s returned status %d", url, resp.StatusCode), nil)
	}

	tmpFile, err := os.CreateTemp("", "bitext-*.pdf")
	if err != nil {
		return "", domain.DownloadError("failed to create temp file", err)
	}

	written, err := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", domain.DownloadError(fmt.Sprintf("failed to write %s to disk", url), err)
	}
	if closeErr != nil {
		os.Remove(tmpFile.Name())
		return "", domain.DownloadError("failed to close temp file", closeErr)
	}

	f.logger.Info().Str("url", url).Int64("bytes", written).Str("path", tmpFile.Name()).Msg("downloaded PDF")
	return tmpFile.Name(), nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var te timeout
	return errors.As(err, &te) && te.Timeout()
}
