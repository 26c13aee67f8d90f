// Command bitext-extractor downloads PDFs, OCRs each page with a vision
// model, and accumulates cleaned English/Khmer line pairs into a CSV
// corpus artifact.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/khmercorpus/bitext-extractor/internal/config"
	"github.com/khmercorpus/bitext-extractor/internal/corpus"
	"github.com/khmercorpus/bitext-extractor/internal/domain"
	"github.com/khmercorpus/bitext-extractor/internal/extract"
	"github.com/khmercorpus/bitext-extractor/internal/llm"
	"github.com/khmercorpus/bitext-extractor/internal/pdf"
	"github.com/khmercorpus/bitext-extractor/internal/sysmon"
	"github.com/khmercorpus/bitext-extractor/internal/ui"
)

var (
	flagModel          string
	flagDetectionModel string
	flagOutput         string
	flagPageCap        int
	flagDPI            float64
	flagVerbose        bool
	flagNoColor        bool
)

var rootCmd = &cobra.Command{
	Use:   "bitext-extractor",
	Short: "Batch OCR of bilingual English/Khmer PDFs into a CSV corpus",
	Long: `bitext-extractor downloads PDF documents from URLs, rasterizes each
page, sends page images to a vision model for bilingual OCR, and collects
cleaned English/Khmer text lines into a CSV file of (id, english, khmer)
rows. Quota exhaustion aborts the batch but still saves partial results.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagModel, "model", "m", "", fmt.Sprintf("extraction model, one of %s", strings.Join(config.SupportedModels, ", ")))
	rootCmd.Flags().StringVar(&flagDetectionModel, "detection-model", "", "language detection model (defaults to the extraction model family)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output CSV path (default: corpus_<timestamp>.csv per batch)")
	rootCmd.Flags().IntVar(&flagPageCap, "page-cap", 0, "skip documents with more pages than this (default 20, 0 keeps default)")
	rootCmd.Flags().Float64Var(&flagDPI, "dpi", 0, "page rendering resolution (default 150, 0 keeps default)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ui.Init(flagNoColor)
	logger := newLogger(flagVerbose)

	cfg := config.Load()
	if flagModel != "" {
		cfg.ExtractionModel = flagModel
	}
	if flagDetectionModel != "" {
		cfg.DetectionModel = flagDetectionModel
	}
	if flagOutput != "" {
		cfg.OutputPath = flagOutput
	}
	if flagPageCap > 0 {
		cfg.PageCap = flagPageCap
	}
	if flagDPI > 0 {
		cfg.DPI = flagDPI
	}
	if err := cfg.Validate(); err != nil {
		ui.Error("%v", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		ui.Warn("received interrupt, shutting down...")
		cancel()
	}()

	fetcher := pdf.NewHTTPFetcher(cfg.DownloadTimeout, logger)
	raster := pdf.NewFitzRasterizer(cfg.DPI, cfg.JPEGQuality, logger)
	vision := llm.NewClient(cfg.APIKey, cfg.ExtractionModel, cfg.DetectionModel, cfg.RequestTimeout, logger)
	gate := sysmon.NewMonitor(cfg.MemoryThreshold, cfg.MemoryPollInterval, logger)
	pipeline := extract.NewPipeline(vision, gate, cfg.PageDelay, logger)

	logger.Info().
		Str("extraction_model", cfg.ExtractionModel).
		Str("detection_model", cfg.DetectionModel).
		Int("page_cap", cfg.PageCap).
		Msg("initialized")

	for {
		urls := ui.CollectURLs(os.Stdin)
		if len(urls) == 0 {
			return nil
		}

		writer := corpus.NewWriter(cfg.OutputPath, logger)
		service := extract.NewService(fetcher, raster, pipeline, writer, cfg.PageCap, ui.NewBatchProgress(), logger)

		path, err := service.Run(ctx, urls)
		switch {
		case err == nil:
			ui.Success("batch complete, results saved to %s", path)
		case domain.IsQuota(err):
			ui.Warn("provider quota exhausted; partial results saved to %s", path)
			ui.Warn("retry the remaining documents after the quota resets")
		case ctx.Err() != nil:
			ui.Warn("batch interrupted; partial results saved to %s", path)
			return nil
		default:
			ui.Error("batch failed: %v", err)
		}

		ui.Info("")
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
