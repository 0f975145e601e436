package extraction

import "regexp"

// cascade is an ordered pattern list. Order encodes precedence: labeled,
// specific patterns come before generic fallbacks, and the first pattern that
// yields an accepted value wins.
type cascade []*regexp.Regexp

// hits counts how many patterns of the cascade match s at all. It is the
// corroboration signal fed to the confidence scorer.
func (c cascade) hits(s string) int {
	n := 0
	for _, re := range c {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// first walks the cascade and returns the first capture that accept turns
// into a value. Every match of a pattern is tried before the next pattern.
func (c cascade) first(s string, accept func(string) (string, bool)) (string, bool) {
	for _, re := range c {
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			if len(m) < 2 {
				continue
			}
			if v, ok := accept(m[1]); ok {
				return v, true
			}
		}
	}
	return "", false
}

// amountPattern is a labeled amount: the label prefix, a number with inner
// spaces, commas or dots, then an optional currency mark.
func amountPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(label + `\s*[:=]?\s*(\d[\d \x{00a0},.]*\d|\d)\s*([€$£]|eur|usd|gbp)?`)
}

const (
	frenchMonths  = `janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[uû]t|septembre|octobre|novembre|d[ée]cembre|janv|f[ée]vr|f[ée]v|jan|mar|avr|jun|juil|jul|ao[uû]|sept|sep|oct|nov|d[ée]c`
	englishMonths = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`
	invoiceCode   = `([A-Z0-9][A-Z0-9\-/_.]{1,29})`
)

// PatternLibrary is the immutable set of patterns and keyword sets the field
// extractors run. Build it once with NewPatternLibrary and share it freely.
type PatternLibrary struct {
	total    cascade
	totalHT  cascade
	totalTTC cascade

	dates cascade

	invoiceLabeled cascade
	invoiceBare    cascade

	vendorLabel *regexp.Regexp
	legalSuffix *regexp.Regexp
	address     *regexp.Regexp

	clientFallback *regexp.Regexp

	itemDescHeader   *regexp.Regexp
	itemAmountHeader *regexp.Regexp
	itemEnd          *regexp.Regexp
	itemSkip         *regexp.Regexp
	number           *regexp.Regexp

	tableGroups []*regexp.Regexp
	tableEnd    *regexp.Regexp
	columnGap   *regexp.Regexp

	iban        cascade
	bic         *regexp.Regexp
	rib         *regexp.Regexp
	account     *regexp.Regexp
	bankKeyword *regexp.Regexp
}

// NewPatternLibrary compiles the default French/English invoice patterns.
func NewPatternLibrary() *PatternLibrary {
	return &PatternLibrary{
		total: cascade{
			amountPattern(`total\s*(?:ttc|t\.t\.c\.?)`),
			amountPattern(`montant\s*total\s*(?:ttc)?`),
			amountPattern(`(?:^|[^\w-])total`),
		},
		totalHT: cascade{
			amountPattern(`total\s*ht`),
			amountPattern(`montant\s*ht`),
			amountPattern(`\bht\b`),
		},
		totalTTC: cascade{
			amountPattern(`total\s*ttc`),
			amountPattern(`montant\s*ttc`),
			amountPattern(`\bttc\b`),
		},

		dates: cascade{
			regexp.MustCompile(`(?i)\b(\d{1,2}[/.-]\d{1,2}[/.-]\d{4})\b`),
			regexp.MustCompile(`(?i)\b(\d{4}[/.-]\d{1,2}[/.-]\d{1,2})\b`),
			regexp.MustCompile(`(?i)\b(\d{1,2}(?:er)?\s+(?:` + frenchMonths + `)\.?\s+\d{4})\b`),
			regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)?\s+(?:` + englishMonths + `)\.?,?\s+\d{4})\b`),
			regexp.MustCompile(`(?i)\b((?:` + englishMonths + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`),
		},

		invoiceLabeled: cascade{
			regexp.MustCompile(`(?i)facture[ \t]*(?:n°|nº|no\.?|num[ée]ro|number|#)?[ \t]*[:=]?[ \t]*` + invoiceCode),
			regexp.MustCompile(`(?i)invoice[ \t]*(?:#|n°|no\.?|number|num)?[ \t]*[:=]?[ \t]*` + invoiceCode),
			regexp.MustCompile(`(?i)n[°º][ \t]*(?:de[ \t]+)?(?:facture|invoice)?[ \t]*[:=]?[ \t]*` + invoiceCode),
			regexp.MustCompile(`(?i)r[ée]f(?:[ée]rence)?\.?[ \t]*(?:facture)?[ \t]*[:=]?[ \t]*` + invoiceCode),
			regexp.MustCompile(`(?i)(?:num[ée]ro|number|no\.|#)[ \t]*[:=]?[ \t]*` + invoiceCode),
		},
		invoiceBare: cascade{
			regexp.MustCompile(`\b([A-Z]{2,4}-?\d{4}-?\d{2,4})\b`),
			regexp.MustCompile(`\b(INV-\d+)\b`),
			regexp.MustCompile(`\b(FA-\d+)\b`),
		},

		vendorLabel: regexp.MustCompile(`(?i)(?:vendeur|fournisseur|[ée]metteur|vendor|seller|supplier)`),
		legalSuffix: regexp.MustCompile(`(?i)\b(?:sarl|sasu|sas|eurl|sa|sci|snc|scop|ltd|limited|inc|llc|gmbh|corp|plc)\b|soci[ée]t[ée]`),
		address:     regexp.MustCompile(`(?i)\b\d{1,4}\s*(?:bis|ter)?,?\s+(?:rue|avenue|av|boulevard|bd|chemin|route|place|pl|impasse|all[ée]e|quai|cours|faubourg|street|st|road|rd|lane|drive|way)(?:[\s.,]|$)|^\d{5}\s+\p{L}`),

		clientFallback: regexp.MustCompile(`(?i:client)[ \t]*:?[ \t]*([A-Z][A-Za-z \t]+)`),

		itemDescHeader:   regexp.MustCompile(`(?i)description|d[ée]signation|article|libell[ée]|produit|prestation|\bitem|service`),
		itemAmountHeader: regexp.MustCompile(`(?i)qt[ée]|quantit[ée]|qty|quantity|prix|price|montant|amount|total|unitaire|\bunit`),
		itemEnd:          regexp.MustCompile(`(?i)(?:sous[- ]?total|subtotal|total|montant\s+ht|net\s+[àa]\s+payer)\D*\d`),
		itemSkip:         regexp.MustCompile(`(?i)\b(?:total|subtotal|tva|vat|tax|taxe|ht|ttc)\b`),
		number:           regexp.MustCompile(`\d+(?:[.,]\d+)*`),

		tableGroups: []*regexp.Regexp{
			regexp.MustCompile(`(?i)description|d[ée]signation|article|libell[ée]|produit|\bitem`),
			regexp.MustCompile(`(?i)qt[ée]|quantit[ée]|qty|quantity`),
			regexp.MustCompile(`(?i)prix|price|\bp\.?u\b|tarif|unitaire|\bunit`),
			regexp.MustCompile(`(?i)montant|amount|total`),
		},
		tableEnd:  regexp.MustCompile(`(?i)sous[- ]?total|subtotal|total|net\s+[àa]\s+payer`),
		columnGap: regexp.MustCompile(`\s{2,}`),

		iban: cascade{
			regexp.MustCompile(`(?i:iban)\s*[:=]?\s*([A-Z]{2}\d{2}(?:[ ]?[A-Z0-9]{4}){2,7}(?:[ ]?[A-Z0-9]{1,4})?)\b`),
			regexp.MustCompile(`\b([A-Z]{2}\d{2}(?:[ ]?[A-Z0-9]{4}){2,7}(?:[ ]?[A-Z0-9]{1,4})?)\b`),
		},
		bic:         regexp.MustCompile(`(?i:bic|swift)(?:\s*/\s*(?i:bic|swift))?(?:\s*(?i:code))?\s*[:=]?\s*([A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?)\b`),
		rib:         regexp.MustCompile(`(?:^|\D)(\d{5}[ ]?\d{5}[ ]?\d{11}[ ]?\d{2})(?:\D|$)`),
		account:     regexp.MustCompile(`(?i)(?:compte|account|acct|a/c)\s*(?:n[°º]|no\.?|number|num[ée]ro)?\s*[:=]?\s*(\d[\d \-]{4,32}\d)`),
		bankKeyword: regexp.MustCompile(`(?i)banque|bank|domiciliation`),
	}
}
