package scanning

import (
	"context"
	"strings"

	"github.com/zombor/facture-ocr/internal/extraction"
)

// DefaultLanguage is used when the requested language is unknown.
const DefaultLanguage = "fra"

// Language is an OCR language the service accepts.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var languages = []Language{
	{Code: "fra", Name: "Français"},
	{Code: "eng", Name: "English"},
	{Code: "deu", Name: "Deutsch"},
	{Code: "spa", Name: "Español"},
	{Code: "ita", Name: "Italiano"},
	{Code: "por", Name: "Português"},
}

// Languages returns the supported OCR languages.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// NormalizeLanguage maps a requested language code to a supported one,
// falling back to DefaultLanguage.
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range languages {
		if l.Code == code {
			return code
		}
	}
	return DefaultLanguage
}

// Result is the output of one OCR run.
type Result struct {
	Text     string             `json:"text"`
	Language string             `json:"language"`
	Tokens   []extraction.Token `json:"tokens,omitempty"`
}

// Input converts the result into extractor input.
func (r *Result) Input() extraction.Input {
	return extraction.Input{Text: r.Text, Tokens: r.Tokens}
}

// Scanner turns an invoice image or PDF into raw text
type Scanner interface {
	// Scan reads the document in the given language
	Scan(ctx context.Context, data []byte, contentType, language string) (*Result, error)
	// Close releases any resources held by the scanner
	Close() error
}
