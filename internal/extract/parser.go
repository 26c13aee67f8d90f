package extract

import (
	"regexp"
	"strings"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// Boilerplate the OCR service sometimes injects before the transcription.
const transcriptionPreamble = "Here's a transcription of the text"

var (
	// Case-insensitive, multi-line section captures. English runs up to the
	// Khmer marker or end of text; Khmer runs to end of text.
	englishSectionRe = regexp.MustCompile(`(?is)english_text:(.*?)(khmer_text:|$)`)
	khmerSectionRe   = regexp.MustCompile(`(?is)khmer_text:(.*)`)

	// Leading run of anything that is not a letter: digits, punctuation,
	// bullets, underscores, whitespace. Strips list-numbering artifacts.
	leadingNoiseRe = regexp.MustCompile(`^[^\p{L}]+`)
)

// ExtractSections parses a raw OCR response into its English and Khmer
// sections. A missing marker, or a section whose content is the literal
// "none" (any case), yields the empty string.
func ExtractSections(raw string) domain.Sections {
	var filtered []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--- Page") {
			continue
		}
		if strings.Contains(line, transcriptionPreamble) {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")

	var sections domain.Sections
	if m := englishSectionRe.FindStringSubmatch(cleaned); m != nil {
		sections.English = normalizeSection(m[1])
	}
	if m := khmerSectionRe.FindStringSubmatch(cleaned); m != nil {
		sections.Khmer = normalizeSection(m[1])
	}
	return sections
}

// normalizeSection trims a captured section and maps the literal "none"
// placeholder to the empty string.
func normalizeSection(capture string) string {
	trimmed := strings.TrimSpace(capture)
	if strings.EqualFold(trimmed, "none") {
		return ""
	}
	return trimmed
}

// CleanLine strips a leading maximal run of non-letter characters, then
// trims surrounding whitespace.
func CleanLine(line string) string {
	return strings.TrimSpace(leadingNoiseRe.ReplaceAllString(line, ""))
}

// SplitLines splits a section into cleaned lines, dropping lines that
// clean to the empty string. Order is preserved.
func SplitLines(section string) []string {
	if section == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		if cleaned := CleanLine(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}
