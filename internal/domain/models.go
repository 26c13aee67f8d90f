package domain

import "strings"

// Document represents one source PDF identified by its download URL.
// It is transient: it exists only while its batch entry is processed.
type Document struct {
	URL        string
	LocalPath  string // Path to the downloaded temp file
	TotalPages int
}

// PageImage represents a single rendered PDF page.
// The image file is owned by the page pipeline for the duration of one
// page's processing and removed immediately after use.
type PageImage struct {
	PageNumber int
	ImagePath  string // Path to temporary JPG file
	Width      int
	Height     int
}

// LanguageVerdict is the language classification for one page image.
type LanguageVerdict string

const (
	VerdictEnglish      LanguageVerdict = "English"
	VerdictKhmer        LanguageVerdict = "Khmer"
	VerdictBoth         LanguageVerdict = "Both"
	VerdictNone         LanguageVerdict = "None"
	VerdictUnrecognized LanguageVerdict = "Unrecognized"
)

// ParseVerdict normalizes a raw model response into a LanguageVerdict.
// Anything outside the known set maps to VerdictUnrecognized.
func ParseVerdict(raw string) LanguageVerdict {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, ".")
	for _, v := range []LanguageVerdict{VerdictEnglish, VerdictKhmer, VerdictBoth, VerdictNone} {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return VerdictUnrecognized
}

// Processable reports whether a page with this verdict is worth sending
// to the OCR model.
func (v LanguageVerdict) Processable() bool {
	switch v {
	case VerdictEnglish, VerdictKhmer, VerdictBoth:
		return true
	default:
		return false
	}
}

// Sections holds the two language sections extracted from a raw OCR
// response. A missing marker or a literal "none" body yields the empty
// string, never a sentinel.
type Sections struct {
	English string
	Khmer   string
}

// RowFragment is an unnumbered (english, khmer) pair produced by the page
// pipeline. The batch driver assigns ids when it folds fragments in.
type RowFragment struct {
	English string
	Khmer   string
}

// OutputRow is one persisted record in the result artifact. IDs form a
// single strictly increasing sequence across the whole batch.
type OutputRow struct {
	ID      int
	English string
	Khmer   string
}
