package extract

import (
	"context"
	"os"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// minLineRunes is the length filter for emitted lines: a cleaned line must
// be strictly longer than this (in runes, not bytes, so Khmer text is not
// misfiltered) to become a row fragment.
const minLineRunes = 3

// Pipeline processes one page at a time: memory gate, rasterize, language
// gate, OCR, parse, clean, emit. Everything non-fatal is recovered here by
// skipping the page; only quota exhaustion escapes.
type Pipeline struct {
	vision    domain.VisionClient
	gate      domain.MemoryGate
	pageDelay time.Duration
	logger    zerolog.Logger
}

// NewPipeline creates a page pipeline. gate may be nil to disable memory
// throttling (used by tests).
func NewPipeline(vision domain.VisionClient, gate domain.MemoryGate, pageDelay time.Duration, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		vision:    vision,
		gate:      gate,
		pageDelay: pageDelay,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// ProcessPage runs one page through the pipeline and returns the row
// fragments it yields. A nil error with no fragments means the page was
// skipped. A non-nil error is either context cancellation or quota
// exhaustion and must abort the batch.
func (p *Pipeline) ProcessPage(ctx context.Context, doc domain.DocumentHandle, pageNum int) ([]domain.RowFragment, error) {
	if p.gate != nil {
		if err := p.gate.Wait(ctx); err != nil {
			return nil, err
		}
	}

	img, err := doc.RenderPage(ctx, pageNum)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn().Int("page", pageNum).Err(err).Msg("failed to rasterize page, skipping")
		return nil, nil
	}
	defer p.releasePage(img)

	verdict, err := p.vision.DetectLanguage(ctx, img.ImagePath)
	if err != nil {
		if domain.IsQuota(err) {
			return nil, err
		}
		p.logger.Warn().Int("page", pageNum).Err(err).Msg("language detection failed, treating page as having no text")
		verdict = domain.VerdictNone
	}
	if !verdict.Processable() {
		p.logger.Info().Int("page", pageNum).Str("verdict", string(verdict)).Msg("skipping page, no English or Khmer text detected")
		return nil, p.pace(ctx)
	}

	raw, err := p.vision.Transcribe(ctx, img.ImagePath)
	if err != nil {
		if domain.IsQuota(err) {
			return nil, err
		}
		p.logger.Warn().Int("page", pageNum).Err(err).Msg("OCR failed, skipping page")
		return nil, p.pace(ctx)
	}

	sections := ExtractSections(raw)
	fragments := emitFragments(SplitLines(sections.English), SplitLines(sections.Khmer))

	p.logger.Debug().Int("page", pageNum).Int("fragments", len(fragments)).Msg("page processed")
	return fragments, p.pace(ctx)
}

// emitFragments applies the independent-line emission policy: one fragment
// per English line and one per Khmer line, each required to clear the
// length filter on its own. No cross-language alignment is attempted.
func emitFragments(engLines, khmLines []string) []domain.RowFragment {
	var fragments []domain.RowFragment
	for _, line := range engLines {
		if utf8.RuneCountInString(line) > minLineRunes {
			fragments = append(fragments, domain.RowFragment{English: line})
		}
	}
	for _, line := range khmLines {
		if utf8.RuneCountInString(line) > minLineRunes {
			fragments = append(fragments, domain.RowFragment{Khmer: line})
		}
	}
	return fragments
}

// releasePage removes the page's temp image. The image is the only large
// allocation per page, so it goes away before the next page is rendered.
func (p *Pipeline) releasePage(img domain.PageImage) {
	if img.ImagePath == "" {
		return
	}
	if err := os.Remove(img.ImagePath); err != nil && !os.IsNotExist(err) {
		p.logger.Debug().Str("path", img.ImagePath).Err(err).Msg("failed to remove page image")
	}
}

// pace applies the fixed inter-page delay that keeps request volume under
// the provider's rate limits.
func (p *Pipeline) pace(ctx context.Context) error {
	if p.pageDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.pageDelay):
		return nil
	}
}
