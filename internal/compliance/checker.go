package compliance

import (
	"context"
	"log/slog"
	"time"

	"github.com/zombor/facture-ocr/internal/extraction"
)

// DefaultTimeout bounds each external enrichment call.
const DefaultTimeout = 10 * time.Second

// ComplianceReport is the full compliance outcome for one invoice.
type ComplianceReport struct {
	ComplianceCheck FieldCheck    `json:"compliance_check"`
	VATValidation   VATValidation `json:"vat_validation"`
	SirenSiret      TaxIDs        `json:"siren_siret"`
	VATIntracom     VATIntracom   `json:"vat_intracom"`
	Enrichment      Enrichment    `json:"enrichment"`
}

// VATIntracom holds the detected VAT number and its VIES verdict, if asked.
type VATIntracom struct {
	Detected  *string `json:"detected"`
	Validated *Result `json:"validated"`
}

// Enrichment holds the external lookups that were attempted.
type Enrichment struct {
	SirenSiret *Result `json:"siren_siret,omitempty"`
	VIES       *Result `json:"vies,omitempty"`
}

// Checker produces compliance reports. Registry and VIES are optional; a nil
// collaborator yields an unsuccessful enrichment result instead of a call.
type Checker struct {
	registry Registry
	vies     VATValidator
	timeout  time.Duration
}

// NewChecker creates a Checker. A non-positive timeout selects DefaultTimeout.
func NewChecker(registry Registry, vies VATValidator, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{registry: registry, vies: vies, timeout: timeout}
}

// Check runs every compliance sub-check over inv and the raw OCR text. It
// never fails: enrichment errors are folded into the report.
func (c *Checker) Check(ctx context.Context, inv *extraction.Invoice, text string) *ComplianceReport {
	r := &ComplianceReport{
		SirenSiret:      DetectSirenSiret(text),
		ComplianceCheck: CheckFrenchCompliance(inv),
		VATValidation:   ValidateFrenchVAT(inv),
	}
	r.VATIntracom.Detected = DetectVATIntracom(text)

	if siret := r.SirenSiret.SIRET; siret != nil {
		r.Enrichment.SirenSiret = c.lookupSIRET(ctx, *siret)
	}
	if vat := r.VATIntracom.Detected; vat != nil {
		res := c.validateVAT(ctx, *vat)
		r.VATIntracom.Validated = res
		r.Enrichment.VIES = res
	}
	return r
}

func (c *Checker) lookupSIRET(ctx context.Context, siret string) *Result {
	failed := func(msg string) *Result {
		return &Result{Success: false, Error: msg, SIRET: siret, SIREN: siret[:sirenLength]}
	}
	if len(siret) != siretLength || !isDigits(siret) {
		return &Result{Success: false, Error: "invalid SIRET"}
	}
	if c.registry == nil {
		return failed("sirene API key not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	res, err := c.registry.LookupSIRET(ctx, siret)
	if err != nil {
		slog.Warn("sirene lookup failed", "siret", siret, "error", err)
		return failed(err.Error())
	}
	return res
}

func (c *Checker) validateVAT(ctx context.Context, vat string) *Result {
	if c.vies == nil {
		return &Result{Success: false, Error: "VIES validation not configured", VATNumber: vat}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	res, err := c.vies.ValidateVAT(ctx, vat)
	if err != nil {
		slog.Warn("VIES validation failed", "vat", vat, "error", err)
		return &Result{Success: false, Error: err.Error(), VATNumber: vat}
	}
	return res
}
