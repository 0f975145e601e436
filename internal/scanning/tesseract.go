package scanning

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/facture-ocr/internal/extraction"
)

// fallbackLanguage is used when the requested language pack is not installed
const fallbackLanguage = "eng"

// Tesseract implements the Scanner interface using a local Tesseract install
type Tesseract struct {
	available map[string]bool
}

// NewTesseract creates a Tesseract Scanner and records which language packs
// are installed.
func NewTesseract() (*Tesseract, error) {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("listing tesseract languages: %w", err)
	}
	return newTesseract(langs), nil
}

func newTesseract(langs []string) *Tesseract {
	t := &Tesseract{available: make(map[string]bool, len(langs))}
	for _, l := range langs {
		t.available[l] = true
	}
	return t
}

// resolveLanguage picks the language pack to load for a requested code
func (t *Tesseract) resolveLanguage(requested string) string {
	lang := NormalizeLanguage(requested)
	if t.available[lang] || len(t.available) == 0 {
		return lang
	}
	if t.available[fallbackLanguage] {
		slog.Warn("tesseract language pack missing, falling back", "requested", lang, "fallback", fallbackLanguage)
		return fallbackLanguage
	}
	return lang
}

// Scan runs Tesseract over a grayscale rendering of the document
func (t *Tesseract) Scan(ctx context.Context, data []byte, contentType, language string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := preprocess(data, contentType)
	if err != nil {
		return nil, err
	}

	lang := t.resolveLanguage(language)

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("setting tesseract language %q: %w", lang, err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("running tesseract: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// The text is still usable without word boxes.
		slog.Warn("reading word boxes failed", "error", err)
	}

	return &Result{
		Text:     strings.TrimSpace(text),
		Language: lang,
		Tokens:   wordTokens(boxes),
	}, nil
}

// Close is a no-op; a client is created per scan
func (t *Tesseract) Close() error {
	return nil
}

// preprocess converts the document to a contrast-boosted grayscale PNG
func preprocess(data []byte, contentType string) ([]byte, error) {
	pngData, err := prepareImage(data, contentType)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	gray := imaging.AdjustContrast(imaging.Grayscale(img), 20)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding grayscale image: %w", err)
	}
	return buf.Bytes(), nil
}

func wordTokens(boxes []gosseract.BoundingBox) []extraction.Token {
	var tokens []extraction.Token
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		tokens = append(tokens, extraction.Token{
			Text:       word,
			Left:       b.Box.Min.X,
			Top:        b.Box.Min.Y,
			Width:      b.Box.Dx(),
			Height:     b.Box.Dy(),
			Confidence: b.Confidence,
		})
	}
	return tokens
}
