package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ribDigits         = 23
	minAccountDigits  = 6
	maxAccountDigits  = 30
	minIBANLength     = 15
	maxIBANLength     = 34
	minBankNameLength = 3
)

// extractBanking collects the payment coordinates printed on the invoice. It
// returns nil when none was found.
func (p *PatternLibrary) extractBanking(lines Lines, text string) *BankingInfo {
	b := &BankingInfo{}
	if v, ok := p.iban.first(text, acceptIBAN); ok {
		b.IBAN = strPtr(v)
	}
	if m := p.bic.FindStringSubmatch(text); m != nil {
		b.BIC = strPtr(m[1])
		b.Swift = b.BIC
	}
	for _, m := range p.rib.FindAllStringSubmatch(text, -1) {
		if v := stripSeparators(m[1]); len(v) == ribDigits {
			b.RIB = strPtr(v)
			break
		}
	}
	for _, m := range p.account.FindAllStringSubmatch(text, -1) {
		if v := stripSeparators(m[1]); len(v) >= minAccountDigits && len(v) <= maxAccountDigits {
			b.AccountNumber = strPtr(v)
			break
		}
	}
	if name := p.bankName(lines); name != "" {
		b.BankName = strPtr(name)
	}

	if b.Found() == 0 {
		return nil
	}
	return b
}

func acceptIBAN(raw string) (string, bool) {
	v := stripSeparators(raw)
	return v, len(v) >= minIBANLength && len(v) <= maxIBANLength
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}

// bankName reads the value after "Banque:"-style labels, a line starting with
// a bank keyword, or the line following a bare keyword line.
func (p *PatternLibrary) bankName(lines Lines) string {
	for i, l := range lines {
		loc := p.bankKeyword.FindStringIndex(l)
		if loc == nil {
			continue
		}
		if k := strings.Index(l, ":"); k >= 0 {
			if name := strings.TrimSpace(l[k+1:]); plausibleBankName(name) {
				return name
			}
		} else if loc[0] == 0 && strings.Contains(l, " ") {
			return l
		}
		if i+1 < len(lines) && plausibleBankName(lines[i+1]) {
			return lines[i+1]
		}
	}
	return ""
}

func plausibleBankName(s string) bool {
	return utf8.RuneCountInString(s) >= minBankNameLength && strings.IndexFunc(s, unicode.IsDigit) < 0
}
