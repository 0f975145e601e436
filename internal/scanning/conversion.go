package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// transcriptionPrompt is shared by the vision-model scanners
const transcriptionPrompt = `You are reading a scanned invoice, most likely French ("facture").
Transcribe ALL of the text in the document exactly as printed, line by line, top to bottom.

Rules:
- Keep the original language; do not translate
- Keep amounts, dates, identifiers (SIREN, SIRET, TVA, IBAN, BIC) and punctuation exactly as written
- Keep one printed line per output line; separate table columns with two spaces
- Do not summarize, interpret or add any commentary
- Do not use markdown code blocks`

// pdfToImage renders the first page of a PDF as PNG
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

// decodeImage decodes JPEG, PNG, GIF, HEIC or HEIF data
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	// Go's standard image package has no HEIC support
	if isHEICFormat(data) || isHEICMimeType(mimeType) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "unknown format") {
			return nil, fmt.Errorf("unsupported image format (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", err)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks for an ftyp box with a HEIC brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// normalizeMIME lowercases the content type and drops parameters
func normalizeMIME(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return mimeType
}

// prepareImage converts a PDF or any supported image to PNG. PNG input is
// returned unchanged.
func prepareImage(data []byte, contentType string) ([]byte, error) {
	mimeType := normalizeMIME(contentType)
	switch {
	case mimeType == "application/pdf":
		out, err := pdfToImage(data)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to image: %w", err)
		}
		return out, nil
	case mimeType == "image/png" && !isHEICFormat(data):
		return data, nil
	}

	img, err := decodeImage(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("converting image to PNG: %w", err)
	}
	return encodePNG(img)
}
