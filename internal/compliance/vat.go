package compliance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zombor/facture-ocr/internal/extraction"
)

// VATIssue describes one VAT error or warning. Only the figures relevant to
// the issue are set.
type VATIssue struct {
	Field            string   `json:"field"`
	Message          string   `json:"message"`
	DetectedRate     *float64 `json:"detected_rate,omitempty"`
	ClosestValidRate *float64 `json:"closest_valid_rate,omitempty"`
	ExpectedTTC      *float64 `json:"expected_ttc,omitempty"`
	ActualTTC        *float64 `json:"actual_ttc,omitempty"`
	Difference       *float64 `json:"difference,omitempty"`
}

// VATValidation is the VAT part of the report. VATRate is nil when the rate
// could not be computed.
type VATValidation struct {
	Valid    bool       `json:"valid"`
	Errors   []VATIssue `json:"errors"`
	Warnings []VATIssue `json:"warnings"`
	VATRate  *float64   `json:"vat_rate"`
}

var (
	legalVATRates = []decimal.Decimal{
		decimal.NewFromInt(20),
		decimal.NewFromInt(10),
		decimal.RequireFromString("5.5"),
		decimal.RequireFromString("2.1"),
		decimal.Zero,
	}
	centTolerance = decimal.RequireFromString("0.01")
	hundred       = decimal.NewFromInt(100)
)

// ValidateFrenchVAT checks the rate implied by HT and TTC against the legal
// French rates and verifies that the amounts add up to the cent. It only
// runs when HT is positive and a TTC (or grand total) is known.
func ValidateFrenchVAT(inv *extraction.Invoice) VATValidation {
	v := VATValidation{Errors: []VATIssue{}, Warnings: []VATIssue{}}
	ttcPtr := inv.TotalTTC
	if ttcPtr == nil {
		ttcPtr = inv.Total
	}
	if inv.TotalHT == nil || ttcPtr == nil || *inv.TotalHT <= 0 {
		v.Valid = true
		return v
	}

	ht := decimal.NewFromFloat(*inv.TotalHT)
	ttc := decimal.NewFromFloat(*ttcPtr)
	tva := ttc.Sub(ht).Round(2)
	rate := tva.Div(ht).Mul(hundred).Round(2)
	v.VATRate = fptr(rate)

	if closest, ok := closestLegalRate(rate); !ok {
		v.Errors = append(v.Errors, VATIssue{
			Field:            "tva_rate",
			Message:          fmt.Sprintf("VAT rate %s%% is not a valid French rate", rate.String()),
			DetectedRate:     fptr(rate),
			ClosestValidRate: fptr(closest),
		})
	}

	if inv.TVA != nil {
		extracted := decimal.NewFromFloat(*inv.TVA)
		if diff := tva.Sub(extracted).Abs(); diff.GreaterThan(centTolerance) {
			v.Warnings = append(v.Warnings, VATIssue{
				Field:      extraction.FieldTVA,
				Message:    fmt.Sprintf("computed VAT %s€ differs from extracted VAT %s€", tva.StringFixed(2), extracted.StringFixed(2)),
				Difference: fptr(diff.Round(2)),
			})
		}
	}

	expected := ht.Add(tva)
	if expected.Sub(ttc).Abs().GreaterThan(centTolerance) {
		v.Errors = append(v.Errors, VATIssue{
			Field:       extraction.FieldTotalTTC,
			Message:     fmt.Sprintf("HT %s€ + VAT %s€ does not equal TTC %s€", ht.StringFixed(2), tva.StringFixed(2), ttc.StringFixed(2)),
			ExpectedTTC: fptr(expected.Round(2)),
			ActualTTC:   fptr(ttc),
		})
	}

	v.Valid = len(v.Errors) == 0
	return v
}

// closestLegalRate reports whether rate is within a cent of a legal rate and
// otherwise returns the nearest legal rate.
func closestLegalRate(rate decimal.Decimal) (decimal.Decimal, bool) {
	closest := legalVATRates[0]
	for _, r := range legalVATRates {
		d := rate.Sub(r).Abs()
		if d.LessThanOrEqual(centTolerance) {
			return r, true
		}
		if d.LessThan(rate.Sub(closest).Abs()) {
			closest = r
		}
	}
	return closest, false
}

func fptr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
