package extraction

import (
	"log/slog"
	"strings"
)

// Extractor turns OCR text into an Invoice and its confidence map. It holds
// no mutable state and is safe for concurrent use.
type Extractor struct {
	patterns *PatternLibrary
}

// NewExtractor creates an extractor running the given patterns. A nil library
// selects NewPatternLibrary.
func NewExtractor(patterns *PatternLibrary) *Extractor {
	if patterns == nil {
		patterns = NewPatternLibrary()
	}
	return &Extractor{patterns: patterns}
}

// Extract runs every field extractor over the input. Missing fields are left
// nil with a zero confidence; extraction itself never fails.
func (x *Extractor) Extract(in Input) (*Invoice, ConfidenceMap) {
	p := x.patterns
	lines := SplitLines(in.Text)
	lower := strings.ToLower(in.Text)

	inv := &Invoice{Currency: "EUR", Text: in.Text, Lines: lines}
	conf := ConfidenceMap{}

	t := p.extractTotals(lower)
	inv.Total, inv.TotalHT, inv.TotalTTC = t.total, t.ht, t.ttc
	if t.currency != "" {
		inv.Currency = t.currency
	}
	conf[FieldTotal] = Score(inv.Total, t.hitsTotal, QualityAmount)
	conf[FieldTotalHT] = Score(inv.TotalHT, t.hitsHT, QualityAmount)
	conf[FieldTotalTTC] = Score(inv.TotalTTC, t.hitsTTC, QualityAmount)

	inv.TVA = deriveTVA(inv.TotalHT, inv.TotalTTC)
	conf[FieldTVA] = Score(inv.TVA, min(t.hitsHT, t.hitsTTC), QualityDerived)

	var dateHits int
	inv.Date, dateHits = p.extractDate(in.Text)
	conf[FieldDate] = Score(inv.Date, dateHits, QualityDate)

	num := p.extractInvoiceNumber(lines, in.Text)
	inv.InvoiceNumber = num.value
	numQuality := QualityBareNumber
	if num.labeled {
		numQuality = QualityLabeledNumber
	}
	conf[FieldInvoiceNumber] = Score(inv.InvoiceNumber, num.hits, numQuality)

	vendor := p.extractVendor(lines)
	inv.Vendor = vendor.value
	conf[FieldVendor] = Score(inv.Vendor, 1, vendor.quality)

	client := p.extractClient(lines, in.Text)
	inv.Client = client.value
	conf[FieldClient] = Score(inv.Client, 1, client.quality)

	inv.Items = p.extractItems(lines)
	conf[FieldItems] = Score(inv.Items, len(inv.Items), QualityItems)

	inv.Tables = p.detectTables(in.Text, in.Tokens)
	conf[FieldTables] = Score(inv.Tables, len(inv.Tables), QualityStructured)

	inv.BankingInfo = p.extractBanking(lines, in.Text)
	conf[FieldBankingInfo] = Score(inv.BankingInfo, inv.BankingInfo.Found(), QualityStructured)

	slog.Debug("extracted invoice fields",
		"lines", len(lines),
		"total_ttc", inv.TotalTTC != nil,
		"invoice_number", inv.InvoiceNumber != nil,
		"items", len(inv.Items),
		"tables", len(inv.Tables),
	)
	return inv, conf
}
