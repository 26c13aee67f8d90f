package domain

import "context"

// Fetcher downloads a document and returns the path of the local copy.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Rasterizer opens a PDF for page-at-a-time rendering.
type Rasterizer interface {
	Open(pdfPath string) (DocumentHandle, error)
}

// DocumentHandle renders individual pages of one open PDF. Pages are
// rendered one at a time so the whole document is never held in memory.
type DocumentHandle interface {
	// PageCount returns the total number of pages in the document.
	PageCount() int

	// RenderPage rasterizes a single 1-based page to a temp image file.
	RenderPage(ctx context.Context, pageNum int) (PageImage, error)

	// Close releases the document and its temp files.
	Close() error
}

// VisionClient is the remote vision-language capability: transcription of
// a page image and a coarse language classification of it.
type VisionClient interface {
	Transcribe(ctx context.Context, imagePath string) (string, error)
	DetectLanguage(ctx context.Context, imagePath string) (LanguageVerdict, error)
}

// MemoryGate blocks until process memory pressure drops below a threshold.
type MemoryGate interface {
	Wait(ctx context.Context) error
}
