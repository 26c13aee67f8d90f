package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
)

// BatchProgress renders a download spinner and a per-document page
// progress bar. It satisfies the batch driver's ProgressReporter.
type BatchProgress struct {
	bar     *progressbar.ProgressBar
	spinner *Spinner
}

// NewBatchProgress creates an idle progress reporter.
func NewBatchProgress() *BatchProgress {
	return &BatchProgress{}
}

// StartDownload shows a spinner while a document downloads.
func (p *BatchProgress) StartDownload(url string) {
	p.spinner = NewSpinner(fmt.Sprintf("downloading %s", truncate(url, 48)))
	p.spinner.Start()
}

// FinishDownload stops the download spinner.
func (p *BatchProgress) FinishDownload() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}

// StartDocument begins a fresh bar sized for the document's pages.
func (p *BatchProgress) StartDocument(url string, totalPages int) {
	p.bar = progressbar.NewOptions(
		totalPages,
		progressbar.OptionSetDescription(fmt.Sprintf("pages of %s", truncate(url, 48))),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// PageDone advances the bar by one page.
func (p *BatchProgress) PageDone() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// FinishDocument completes and drops the current bar.
func (p *BatchProgress) FinishDocument() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// Spinner wraps an indeterminate spinner for download waits.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop stops the spinner animation.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
