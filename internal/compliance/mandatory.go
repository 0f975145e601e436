package compliance

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/zombor/facture-ocr/internal/extraction"
)

// FieldCheck is the mandatory-mention part of the report. Score starts at 100
// and loses a fixed penalty per missing field or warning.
type FieldCheck struct {
	Compliant             bool     `json:"compliant"`
	Score                 float64  `json:"score"`
	MissingFields         []string `json:"missing_fields"`
	Warnings              []string `json:"warnings"`
	RequiredFieldsPresent bool     `json:"required_fields_present"`
}

const (
	penaltyDate          = 15
	penaltyInvoiceNumber = 15
	penaltyTotalHT       = 10
	penaltyTotalTTC      = 10
	penaltyVendor        = 10
	penaltyVendorLabel   = 10
	penaltyClient        = 5
	penaltyAddress       = 5

	minPartyLength = 3
)

var (
	vendorLabelWords = []string{"vendeur", "vendor", "vendeur:", "vendor:"}
	addressKeywords  = []string{"rue", "avenue", "boulevard", "route", "street", "road", "paris", "lyon", "marseille"}
)

// CheckFrenchCompliance verifies the mentions French law requires on an
// invoice. Every check runs; a missing client or address only warns.
func CheckFrenchCompliance(inv *extraction.Invoice) FieldCheck {
	check := FieldCheck{MissingFields: []string{}, Warnings: []string{}}
	score := 100.0
	missing := func(field string, penalty float64) {
		check.MissingFields = append(check.MissingFields, field)
		score -= penalty
	}
	warn := func(msg string, penalty float64) {
		check.Warnings = append(check.Warnings, msg)
		score -= penalty
	}

	if blank(inv.Date) {
		missing(extraction.FieldDate, penaltyDate)
	}
	if blank(inv.InvoiceNumber) {
		missing(extraction.FieldInvoiceNumber, penaltyInvoiceNumber)
	}
	if inv.TotalHT == nil && inv.Total == nil {
		missing(extraction.FieldTotalHT, penaltyTotalHT)
	}
	if inv.TotalTTC == nil && inv.Total == nil {
		missing(extraction.FieldTotalTTC, penaltyTotalTTC)
	}

	switch {
	case shorterThan(inv.Vendor, minPartyLength):
		missing(extraction.FieldVendor, penaltyVendor)
	case isVendorLabel(*inv.Vendor):
		missing(extraction.FieldVendor, penaltyVendorLabel)
		check.Warnings = append(check.Warnings, "vendor is a label, not a company name")
	}

	if shorterThan(inv.Client, minPartyLength) {
		warn("client name not detected (mandatory for B2B invoices)", penaltyClient)
	}
	if !hasAddress(inv.Text) {
		warn("vendor address not detected", penaltyAddress)
	}

	check.Score = math.Max(0, score)
	check.Compliant = len(check.MissingFields) == 0
	check.RequiredFieldsPresent = check.Compliant
	return check
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func shorterThan(s *string, n int) bool {
	return s == nil || utf8.RuneCountInString(strings.TrimSpace(*s)) < n
}

func isVendorLabel(vendor string) bool {
	return slices.Contains(vendorLabelWords, strings.ToLower(strings.TrimSpace(vendor)))
}

func hasAddress(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range addressKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
