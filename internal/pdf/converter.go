package pdf

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// FitzRasterizer implements PDF to image conversion using go-fitz. Pages
// are rendered one at a time so only a single page image exists at once.
type FitzRasterizer struct {
	dpi     float64
	quality int
	logger  zerolog.Logger
}

// NewFitzRasterizer creates a rasterizer that renders pages at the given
// DPI and encodes them as JPEG at the given quality (1-100).
func NewFitzRasterizer(dpi float64, quality int, logger zerolog.Logger) *FitzRasterizer {
	return &FitzRasterizer{
		dpi:     dpi,
		quality: quality,
		logger:  logger.With().Str("component", "rasterizer").Logger(),
	}
}

// Open opens a PDF for page-at-a-time rendering.
func (r *FitzRasterizer) Open(pdfPath string) (domain.DocumentHandle, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, domain.ConversionError(fmt.Sprintf("failed to open PDF %s", pdfPath), err)
	}

	tempDir, err := os.MkdirTemp("", "bitext-pages-*")
	if err != nil {
		doc.Close()
		return nil, domain.ConversionError("failed to create temp directory", err)
	}

	return &fitzDocument{
		doc:     doc,
		tempDir: tempDir,
		dpi:     r.dpi,
		quality: r.quality,
		logger:  r.logger,
	}, nil
}

// fitzDocument is the per-document rendering handle.
type fitzDocument struct {
	doc     *fitz.Document
	tempDir string
	dpi     float64
	quality int
	logger  zerolog.Logger
}

// PageCount returns the total number of pages in the document.
func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes exactly one 1-based page and writes it to a temp
// JPEG. Rendering only the requested page keeps memory flat regardless of
// document size.
func (d *fitzDocument) RenderPage(ctx context.Context, pageNum int) (domain.PageImage, error) {
	select {
	case <-ctx.Done():
		return domain.PageImage{}, ctx.Err()
	default:
	}

	if pageNum < 1 || pageNum > d.doc.NumPage() {
		return domain.PageImage{}, domain.ConversionError(fmt.Sprintf("page %d out of range (1-%d)", pageNum, d.doc.NumPage()), nil)
	}

	img, err := d.doc.ImageDPI(pageNum-1, d.dpi)
	if err != nil {
		return domain.PageImage{}, domain.ConversionError(fmt.Sprintf("failed to render page %d", pageNum), err)
	}

	outputPath := filepath.Join(d.tempDir, fmt.Sprintf("page_%03d.jpg", pageNum))
	outputFile, err := os.Create(outputPath)
	if err != nil {
		return domain.PageImage{}, domain.ConversionError(fmt.Sprintf("failed to create output file for page %d", pageNum), err)
	}

	err = jpeg.Encode(outputFile, img, &jpeg.Options{Quality: d.quality})
	outputFile.Close()
	if err != nil {
		os.Remove(outputPath)
		return domain.PageImage{}, domain.ConversionError(fmt.Sprintf("failed to encode page %d as JPG", pageNum), err)
	}

	bounds := img.Bounds()
	return domain.PageImage{
		PageNumber: pageNum,
		ImagePath:  outputPath,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}

// Close releases the document and removes its temp directory.
func (d *fitzDocument) Close() error {
	if d.doc != nil {
		d.doc.Close()
		d.doc = nil
	}
	if d.tempDir != "" {
		if err := os.RemoveAll(d.tempDir); err != nil {
			return domain.ConversionError("failed to remove temp directory", err)
		}
		d.tempDir = ""
	}
	return nil
}
