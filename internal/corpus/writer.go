// Package corpus persists extracted bilingual rows as a CSV artifact.
package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// header is the fixed first row of every artifact.
var header = []string{"ID", "English_Text", "Khmer_Text"}

// Writer persists OutputRows to a CSV file. Save rewrites the file from
// scratch every time, so one call on success and one early call on abort
// both produce a complete artifact without merge logic.
type Writer struct {
	path   string
	logger zerolog.Logger
}

// NewWriter creates a writer for the given path. An empty path derives a
// timestamped filename in the working directory.
func NewWriter(path string, logger zerolog.Logger) *Writer {
	if path == "" {
		path = fmt.Sprintf("corpus_%s.csv", time.Now().Format("20060102_150405"))
	}
	return &Writer{
		path:   path,
		logger: logger.With().Str("component", "writer").Logger(),
	}
}

// Path returns the artifact path.
func (w *Writer) Path() string {
	return w.path
}

// Save writes the header and all rows, truncating any previous content.
func (w *Writer) Save(rows []domain.OutputRow) error {
	file, err := os.Create(w.path)
	if err != nil {
		return domain.SaveError(fmt.Sprintf("failed to create %s", w.path), err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		return domain.SaveError("failed to write header", err)
	}
	for _, row := range rows {
		record := []string{strconv.Itoa(row.ID), row.English, row.Khmer}
		if err := cw.Write(record); err != nil {
			return domain.SaveError(fmt.Sprintf("failed to write row %d", row.ID), err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return domain.SaveError("failed to flush CSV", err)
	}

	w.logger.Info().Int("rows", len(rows)).Str("path", w.path).Msg("saved output artifact")
	return nil
}
