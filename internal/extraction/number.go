package extraction

import (
	"strings"
	"unicode"
)

const (
	labeledNumberLines = 15
	bareNumberLines    = 20
)

// invoiceNumber is the result of the two-tier search. Labeled is false when
// the value came from the unlabeled fallback.
type invoiceNumber struct {
	value   *string
	hits    int
	labeled bool
}

// extractInvoiceNumber looks for a labeled number in the first lines, then in
// the whole text. Bare invoice-like codes near the top are only considered
// when no label produced a candidate.
func (p *PatternLibrary) extractInvoiceNumber(lines Lines, text string) invoiceNumber {
	head := lines.Head(labeledNumberLines).Join()
	for _, scope := range []string{head, text} {
		if v, ok := p.invoiceLabeled.first(scope, acceptInvoiceNumber); ok {
			return invoiceNumber{value: strPtr(v), hits: max(p.invoiceLabeled.hits(text), 1), labeled: true}
		}
	}

	top := lines.Head(bareNumberLines).Join()
	if v, ok := p.invoiceBare.first(top, acceptInvoiceNumber); ok {
		return invoiceNumber{value: strPtr(v), hits: p.invoiceBare.hits(top)}
	}
	return invoiceNumber{}
}

// acceptInvoiceNumber uppercases a candidate and keeps it when it is 3 to 30
// characters long and carries at least one digit.
func acceptInvoiceNumber(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimRight(raw, ".-/_"))
	if len(s) < 3 || len(s) > 30 {
		return "", false
	}
	if strings.IndexFunc(s, unicode.IsDigit) < 0 {
		return "", false
	}
	return s, true
}
