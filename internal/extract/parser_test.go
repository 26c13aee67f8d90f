package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSections(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantEnglish string
		wantKhmer   string
	}{
		{
			name:        "both sections present",
			raw:         "English_Text: A\nKhmer_Text: B",
			wantEnglish: "A",
			wantKhmer:   "B",
		},
		{
			name:        "markers are case insensitive",
			raw:         "ENGLISH_TEXT: Hello\nkhmer_text: សួស្តី",
			wantEnglish: "Hello",
			wantKhmer:   "សួស្តី",
		},
		{
			name:        "multi-line sections",
			raw:         "English_Text:\nline one\nline two\nKhmer_Text:\nបន្ទាត់មួយ",
			wantEnglish: "line one\nline two",
			wantKhmer:   "បន្ទាត់មួយ",
		},
		{
			name:        "literal none becomes empty",
			raw:         "English_Text: None\nKhmer_Text: សួស្តី",
			wantEnglish: "",
			wantKhmer:   "សួស្តី",
		},
		{
			name:        "none is case insensitive",
			raw:         "English_Text: Hello\nKhmer_Text: NONE",
			wantEnglish: "Hello",
			wantKhmer:   "",
		},
		{
			name:        "missing khmer marker",
			raw:         "English_Text: only english here",
			wantEnglish: "only english here",
			wantKhmer:   "",
		},
		{
			name:        "missing both markers",
			raw:         "some unstructured response",
			wantEnglish: "",
			wantKhmer:   "",
		},
		{
			name:        "page separator boilerplate removed",
			raw:         "--- Page 1 ---\nEnglish_Text: Hello\nKhmer_Text: None",
			wantEnglish: "Hello",
			wantKhmer:   "",
		},
		{
			name:        "transcription preamble removed",
			raw:         "Here's a transcription of the text in the image:\nEnglish_Text: Hello\nKhmer_Text: None",
			wantEnglish: "Hello",
			wantKhmer:   "",
		},
		{
			name:        "empty input",
			raw:         "",
			wantEnglish: "",
			wantKhmer:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := ExtractSections(tt.raw)
			assert.Equal(t, tt.wantEnglish, sections.English)
			assert.Equal(t, tt.wantKhmer, sections.Khmer)
		})
	}
}

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"numbered list prefix", "1. Hello", "Hello"},
		{"whitespace only", "   ", ""},
		{"bullet prefix", "•  Bonjour", "Bonjour"},
		{"dash prefix", "- item", "item"},
		{"underscore prefix", "__note", "note"},
		{"no prefix", "Hello", "Hello"},
		{"trailing whitespace trimmed", "2) Hello  ", "Hello"},
		{"khmer text preserved", "១. សួស្តី", "សួស្តី"},
		{"digits only", "12345", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLine(tt.in))
		})
	}
}

func TestSplitLines(t *testing.T) {
	t.Run("cleans and drops empties in order", func(t *testing.T) {
		section := "1. first line\n\n   \n2. second line\n***\nthird line"
		assert.Equal(t, []string{"first line", "second line", "third line"}, SplitLines(section))
	})

	t.Run("empty section yields nil", func(t *testing.T) {
		assert.Nil(t, SplitLines(""))
	})
}
