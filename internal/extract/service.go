package extract

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// PageProcessor is the per-page pipeline as seen by the batch driver.
type PageProcessor interface {
	ProcessPage(ctx context.Context, doc domain.DocumentHandle, pageNum int) ([]domain.RowFragment, error)
}

// RowSaver persists the accumulated rows. Save is a total overwrite so it
// can be called once on success or once early on abort.
type RowSaver interface {
	Save(rows []domain.OutputRow) error
	Path() string
}

// ProgressReporter receives per-document progress callbacks. May be nil.
type ProgressReporter interface {
	StartDownload(url string)
	FinishDownload()
	StartDocument(url string, totalPages int)
	PageDone()
	FinishDocument()
}

// Service is the batch driver: it walks the documents, folds page fragments
// into a batch-wide row sequence with one monotonic id counter, and keeps
// the artifact recoverable when the provider's quota runs out mid-batch.
type Service struct {
	fetcher  domain.Fetcher
	raster   domain.Rasterizer
	pages    PageProcessor
	saver    RowSaver
	pageCap  int
	progress ProgressReporter
	logger   zerolog.Logger
}

// NewService creates a batch driver. pageCap <= 0 disables the per-document
// page cap. progress may be nil.
func NewService(fetcher domain.Fetcher, raster domain.Rasterizer, pages PageProcessor, saver RowSaver, pageCap int, progress ProgressReporter, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		raster:   raster,
		pages:    pages,
		saver:    saver,
		pageCap:  pageCap,
		progress: progress,
		logger:   logger.With().Str("component", "batch").Logger(),
	}
}

// Run processes the documents in input order and returns the artifact
// path. On quota exhaustion it saves what has been accumulated, stops the
// whole batch, and returns the quota error alongside the partial artifact
// path so the caller can report both.
func (s *Service) Run(ctx context.Context, urls []string) (string, error) {
	var rows []domain.OutputRow
	nextID := 1

	for i, url := range urls {
		s.logger.Info().Int("document", i+1).Int("total", len(urls)).Str("url", url).Msg("processing document")

		fragments, err := s.processDocument(ctx, url)
		for _, frag := range fragments {
			rows = append(rows, domain.OutputRow{ID: nextID, English: frag.English, Khmer: frag.Khmer})
			nextID++
		}
		if err != nil {
			// Quota exhaustion or cancellation: save progress and stop.
			s.save(rows)
			return s.saver.Path(), err
		}
	}

	if err := s.save(rows); err != nil {
		return s.saver.Path(), err
	}
	s.logger.Info().Int("rows", len(rows)).Str("path", s.saver.Path()).Msg("batch complete")
	return s.saver.Path(), nil
}

// processDocument downloads and processes one document. Fragments yielded
// before an abort are returned alongside the error so no page's output is
// lost. Per-document failures are logged and produce no error.
func (s *Service) processDocument(ctx context.Context, url string) ([]domain.RowFragment, error) {
	if s.progress != nil {
		s.progress.StartDownload(url)
	}
	localPath, err := s.fetcher.Fetch(ctx, url)
	if s.progress != nil {
		s.progress.FinishDownload()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Str("url", url).Err(err).Msg("download failed, skipping document")
		return nil, nil
	}
	defer s.removeFile(localPath)

	doc, err := s.raster.Open(localPath)
	if err != nil {
		s.logger.Warn().Str("url", url).Err(err).Msg("failed to open PDF, skipping document")
		return nil, nil
	}
	defer doc.Close()

	totalPages := doc.PageCount()
	if totalPages == 0 {
		s.logger.Warn().Str("url", url).Msg("PDF has no pages, skipping document")
		return nil, nil
	}
	if s.pageCap > 0 && totalPages > s.pageCap {
		s.logger.Warn().Str("url", url).Int("pages", totalPages).Int("cap", s.pageCap).Msg("document exceeds page cap, skipping entirely")
		return nil, nil
	}

	if s.progress != nil {
		s.progress.StartDocument(url, totalPages)
		defer s.progress.FinishDocument()
	}

	var fragments []domain.RowFragment
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		pageFragments, err := s.pages.ProcessPage(ctx, doc, pageNum)
		fragments = append(fragments, pageFragments...)
		if err != nil {
			if domain.IsQuota(err) {
				s.logger.Error().Str("url", url).Int("page", pageNum).Err(err).Msg("provider quota exhausted, aborting batch")
			}
			return fragments, err
		}
		if s.progress != nil {
			s.progress.PageDone()
		}
	}
	return fragments, nil
}

// save persists the accumulated rows. A save failure is logged but never
// crashes the process; the rows are simply lost for this attempt.
func (s *Service) save(rows []domain.OutputRow) error {
	if err := s.saver.Save(rows); err != nil {
		s.logger.Error().Err(err).Msg("failed to save output artifact")
		return domain.SaveError("failed to save output artifact", err)
	}
	return nil
}

func (s *Service) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Debug().Str("path", path).Err(err).Msg("failed to remove temp PDF")
	}
}
