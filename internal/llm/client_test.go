package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// newTestClient points a client at a test server with fast retries.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient("test-key", "gemini-1.5-flash", "gemini-1.5-flash", 5*time.Second, zerolog.Nop())
	c.baseURL = serverURL
	c.retry = &RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	return c
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake jpeg bytes"), 0o644))
	return path
}

func textResponse(text string) Response {
	return Response{Candidates: []Candidate{
		{Content: Content{Parts: []Part{{Text: text}}}},
	}}
}

func TestTranscribe_ReturnsCandidateText(t *testing.T) {
	var gotReq Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(textResponse("English_Text: Hello\nKhmer_Text: None"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	text, err := c.Transcribe(context.Background(), writeTestImage(t))
	require.NoError(t, err)
	assert.Equal(t, "English_Text: Hello\nKhmer_Text: None", text)

	// The request must carry the prompt and the inline image.
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 2)
	prompt := gotReq.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, englishMarker)
	assert.Contains(t, prompt, khmerMarker)
	assert.Contains(t, prompt, "None")
	img := gotReq.Contents[0].Parts[1].InlineData
	require.NotNil(t, img)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.NotEmpty(t, img.Data)
}

func TestTranscribe_ConcatenatesParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Candidates: []Candidate{
			{Content: Content{Parts: []Part{{Text: "English_Text: Hel"}, {Text: "lo"}}}},
		}})
	}))
	defer server.Close()

	text, err := newTestClient(t, server.URL).Transcribe(context.Background(), writeTestImage(t))
	require.NoError(t, err)
	assert.Equal(t, "English_Text: Hello", text)
}

func TestDetectLanguage_ParsesVerdict(t *testing.T) {
	tests := []struct {
		reply string
		want  domain.LanguageVerdict
	}{
		{"English", domain.VerdictEnglish},
		{"khmer", domain.VerdictKhmer},
		{" Both. ", domain.VerdictBoth},
		{"None", domain.VerdictNone},
		{"The page appears to contain English text.", domain.VerdictUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(textResponse(tt.reply))
			}))
			defer server.Close()

			verdict, err := newTestClient(t, server.URL).DetectLanguage(context.Background(), writeTestImage(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict)
		})
	}
}

func TestGenerate_429IsQuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Transcribe(context.Background(), writeTestImage(t))
	require.Error(t, err)
	assert.True(t, domain.IsQuota(err))
	assert.Contains(t, err.Error(), "Resource has been exhausted")
}

func TestGenerate_QuotaMessageIsQuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Quota exceeded for requests per day","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Transcribe(context.Background(), writeTestImage(t))
	require.Error(t, err)
	assert.True(t, domain.IsQuota(err), "a quota mention in the provider message must classify as quota regardless of status")
}

func TestGenerate_ServerErrorIsRetriedThenOCRError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Transcribe(context.Background(), writeTestImage(t))
	require.Error(t, err)
	assert.False(t, domain.IsQuota(err))
	assert.EqualValues(t, 2, calls.Load(), "500 responses retry up to MaxRetries")
}

func TestGenerate_429IsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Transcribe(context.Background(), writeTestImage(t))
	require.Error(t, err)
	assert.True(t, domain.IsQuota(err))
	assert.EqualValues(t, 1, calls.Load(), "retrying into an exhausted quota is pointless")
}

func TestGenerate_SucceedsAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(textResponse("English"))
	}))
	defer server.Close()

	verdict, err := newTestClient(t, server.URL).DetectLanguage(context.Background(), writeTestImage(t))
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictEnglish, verdict)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDetectLanguage_NonQuotaFailureIsDetectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"Invalid image","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).DetectLanguage(context.Background(), writeTestImage(t))
	require.Error(t, err)

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorTypeDetection, de.Type)
}

func TestGenerate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{})
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Transcribe(context.Background(), writeTestImage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerate_MissingImageFile(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0")

	_, err := c.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to read image"))
}

func TestClassifyAPIError_FallsBackToRawBody(t *testing.T) {
	err := classifyAPIError(http.StatusBadGateway, []byte("upstream connect error"))
	require.Error(t, err)
	assert.False(t, domain.IsQuota(err))
	assert.Contains(t, err.Error(), "upstream connect error")
}
