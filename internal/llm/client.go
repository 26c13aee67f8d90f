package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// Section markers the OCR prompt asks the model to emit. The parser in
	// internal/extract depends on these exact labels.
	englishMarker = "English_Text:"
	khmerMarker   = "Khmer_Text:"
)

// Client handles communication with the Gemini generateContent API. One
// client serves two named capabilities: the extraction (OCR) model and the
// cheaper language-detection model.
type Client struct {
	apiKey          string
	extractionModel string
	detectionModel  string
	baseURL         string
	httpClient      *http.Client
	retry           *RetryConfig
	logger          zerolog.Logger
}

// Part is one piece of multimodal request content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

// InlineData carries base64 image bytes inline in the request.
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Content is a single message in the request.
type Content struct {
	Parts []Part `json:"parts"`
}

// Request is the generateContent request body.
type Request struct {
	Contents []Content `json:"contents"`
}

// Response is the generateContent response body.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one completion candidate.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// apiError is the error envelope the API returns on non-2xx status.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient creates a new Gemini client for the given model pair.
func NewClient(apiKey, extractionModel, detectionModel string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		apiKey:          apiKey,
		extractionModel: extractionModel,
		detectionModel:  detectionModel,
		baseURL:         defaultBaseURL,
		httpClient:      &http.Client{Timeout: timeout},
		retry:           DefaultRetryConfig(),
		logger:          logger.With().Str("component", "llm").Logger(),
	}
}

// Transcribe runs the extraction model over a page image and returns the
// raw bilingual transcription text.
func (c *Client) Transcribe(ctx context.Context, imagePath string) (string, error) {
	text, err := c.generate(ctx, c.extractionModel, ocrPrompt(), imagePath)
	if err != nil {
		return "", err
	}
	return text, nil
}

// DetectLanguage runs the detection model over a page image. Failures are
// returned as-is; quota errors keep their distinct type so callers can
// abort instead of skipping.
func (c *Client) DetectLanguage(ctx context.Context, imagePath string) (domain.LanguageVerdict, error) {
	text, err := c.generate(ctx, c.detectionModel, detectPrompt(), imagePath)
	if err != nil {
		if domain.IsQuota(err) {
			return domain.VerdictNone, err
		}
		return domain.VerdictNone, domain.DetectionError("language detection failed", err)
	}
	return domain.ParseVerdict(text), nil
}

// generate sends one prompt+image request to the named model and returns
// the concatenated candidate text.
func (c *Client) generate(ctx context.Context, model, prompt, imagePath string) (string, error) {
	req, err := c.buildRequest(prompt, imagePath)
	if err != nil {
		return "", domain.OCRError("failed to build request", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", domain.OCRError("failed to marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return "", domain.TimeoutError(fmt.Sprintf("request to model %s timed out", model), err)
		}
		return "", domain.OCRError("failed to send request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.OCRError("failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyAPIError(resp.StatusCode, respBody)
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", domain.OCRError("failed to parse API response", err)
	}
	if len(apiResp.Candidates) == 0 {
		return "", domain.OCRError("no candidates in API response", nil)
	}

	var sb strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// buildRequest constructs the generateContent request with the image
func (c *Client) buildRequest(prompt, imagePath string) (*Request, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return &Request{
		Contents: []Content{
			{
				Parts: []Part{
					{Text: prompt},
					{InlineData: &InlineData{
						MIMEType: "image/jpeg",
						Data:     base64.StdEncoding.EncodeToString(imageData),
					}},
				},
			},
		},
	}, nil
}

// classifyAPIError maps a provider error response onto the error taxonomy.
// Quota exhaustion is detected by HTTP 429 or a "quota" mention in the
// provider message; everything else is a transient OCR failure. This is
// the single place that inspects provider error text.
func classifyAPIError(statusCode int, body []byte) error {
	message := string(body)
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	if statusCode == http.StatusTooManyRequests || strings.Contains(strings.ToLower(message), "quota") {
		return domain.QuotaError(fmt.Sprintf("provider quota exhausted (HTTP %d): %s", statusCode, message), nil)
	}
	return domain.OCRError(fmt.Sprintf("API returned status %d: %s", statusCode, message), nil)
}

// isClientTimeout reports whether err is an http.Client timeout.
func isClientTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	var te timeout
	return errors.As(err, &te) && te.Timeout()
}

// ocrPrompt is the bilingual transcription prompt. The marker labels and
// the "None" convention are part of the wire contract with the parser.
func ocrPrompt() string {
	return "Extract all readable text from this image. Separate the extracted text into two sections with clear headers: '" +
		englishMarker + "' and '" + khmerMarker + "'. Only include text actually found in the image under each section. " +
		"If a section is empty, just write 'None'."
}

// detectPrompt asks for a one-word language classification of the page.
func detectPrompt() string {
	return "Look at this page image and identify which of the following languages its readable text is written in: " +
		"English, Khmer, or both. Respond with exactly one word: English, Khmer, Both, or None if the page has no readable text."
}
