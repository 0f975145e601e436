package invoice

import (
	"time"

	"github.com/zombor/facture-ocr/internal/compliance"
	"github.com/zombor/facture-ocr/internal/extraction"
)

// Source values for an Analysis
const (
	SourceUpload = "upload"
	SourceText   = "text"
)

// Analysis is one processed invoice with its extraction and compliance results
type Analysis struct {
	ID          string                   `json:"id"`
	Source      string                   `json:"source"`
	Filename    string                   `json:"filename,omitempty"` // stored file name, empty for text input
	ContentType string                   `json:"content_type,omitempty"`
	Language    string                   `json:"language"`
	Invoice     *extraction.Invoice      `json:"extracted_data"`
	Confidence  extraction.ConfidenceMap `json:"confidence"`
	Compliance  *compliance.ComplianceReport       `json:"compliance"`
	CreatedAt   time.Time                `json:"created_at"`
}

// HasFile reports whether the original document was stored
func (a *Analysis) HasFile() bool {
	return a.Filename != ""
}
