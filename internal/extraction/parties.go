package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	vendorLookahead     = 4
	vendorFallbackLines = 10
)

// party is a vendor or client name and the context quality of the strategy
// that found it.
type party struct {
	value   *string
	quality float64
}

func (p *PatternLibrary) looksLikeAddress(line string) bool {
	return p.address.MatchString(line)
}

func (p *PatternLibrary) extractVendor(lines Lines) party {
	for i, l := range lines {
		if !p.vendorLabel.MatchString(l) {
			continue
		}
		for j, cand := range lines.Window(i+1, i+1+vendorLookahead) {
			n := utf8.RuneCountInString(cand)
			if n < 5 || n > 99 || p.looksLikeAddress(cand) {
				continue
			}
			if j == 0 || p.legalSuffix.MatchString(cand) {
				return party{value: strPtr(cand), quality: QualityLabeledParty}
			}
		}
	}

	for _, l := range lines.Head(vendorFallbackLines) {
		if p.legalSuffix.MatchString(l) && !strings.Contains(strings.ToLower(l), "facture") {
			return party{value: strPtr(l), quality: QualityFallbackParty}
		}
	}
	return party{}
}

func (p *PatternLibrary) extractClient(lines Lines, text string) party {
	for i, l := range lines {
		lower := strings.ToLower(l)
		if !strings.Contains(lower, "client") && !strings.Contains(lower, "customer") {
			continue
		}
		if !strings.Contains(l, ":") || i+1 >= len(lines) {
			continue
		}
		next := lines[i+1]
		n := utf8.RuneCountInString(next)
		first, _ := utf8.DecodeRuneInString(next)
		if n >= 3 && n < 100 && !p.looksLikeAddress(next) && !unicode.IsDigit(first) {
			return party{value: strPtr(next), quality: QualityLabeledParty}
		}
	}

	if m := p.clientFallback.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); len(name) >= 3 {
			return party{value: strPtr(name), quality: QualityFallbackParty}
		}
	}
	return party{}
}
