package compliance

import (
	"regexp"
	"strings"
	"unicode"
)

// TaxIDs are the French registry identifiers printed on the invoice.
type TaxIDs struct {
	SIREN *string `json:"siren"`
	SIRET *string `json:"siret"`
}

const (
	siretLength = 14
	sirenLength = 9

	minVATLength = 4
	maxVATLength = 14
	minIBANChars = 15
)

var (
	reIDSeparators = regexp.MustCompile(`[\s\-.]`)
	reLabeledSIRET = regexp.MustCompile(`(?i)SIRET[:=]?(\d{14})`)
	reBareSIRET    = regexp.MustCompile(`\b(\d{14})\b`)
	reLabeledSIREN = regexp.MustCompile(`(?i)SIREN[:=]?(\d{9})`)
	reBareSIREN    = regexp.MustCompile(`\b(\d{9})\b`)

	reFrenchVAT  = regexp.MustCompile(`\bFR ?([0-9A-Z]{2}) ?(\d{3}) ?(\d{3}) ?(\d{3})\b`)
	reLabeledVAT = regexp.MustCompile(`(?:TVA|VAT)[ \t]*(?:INTRACOM\w*|INTRA)?[ \t]*(?:N°|NO\.?)?[ \t]*[:=]?[ \t]*([A-Z]{2}[A-Z0-9]{2,12})\b`)
	reBareVAT    = regexp.MustCompile(`\b([A-Z]{2}[A-Z0-9]{2,12})\b`)
	reIBANLike   = regexp.MustCompile(`\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){2,7}(?: ?[A-Z0-9]{1,4})?\b`)
)

// euVATPrefixes are the country codes VIES accepts. Greece uses EL and
// Northern Ireland XI.
var euVATPrefixes = map[string]bool{
	"AT": true, "BE": true, "BG": true, "CY": true, "CZ": true, "DE": true,
	"DK": true, "EE": true, "EL": true, "ES": true, "FI": true, "FR": true,
	"HR": true, "HU": true, "IE": true, "IT": true, "LT": true, "LU": true,
	"LV": true, "MT": true, "NL": true, "PL": true, "PT": true, "RO": true,
	"SE": true, "SI": true, "SK": true, "XI": true,
}

// DetectSirenSiret finds the SIRET (labeled first, then any 14-digit run)
// and derives the SIREN from it. Without a SIRET a labeled or bare 9-digit
// SIREN is looked for. Separators inside labeled numbers are ignored.
func DetectSirenSiret(text string) TaxIDs {
	var ids TaxIDs
	clean := reIDSeparators.ReplaceAllString(text, "")

	if siret := firstDigits(siretLength, clean, reLabeledSIRET, text, reBareSIRET); siret != "" {
		ids.SIRET = &siret
		siren := siret[:sirenLength]
		ids.SIREN = &siren
		return ids
	}
	if siren := firstDigits(sirenLength, clean, reLabeledSIREN, text, reBareSIREN); siren != "" {
		ids.SIREN = &siren
	}
	return ids
}

// firstDigits returns the labeled match from the cleaned text, else the bare
// match from the original text, as long as it is exactly n digits.
func firstDigits(n int, clean string, labeled *regexp.Regexp, text string, bare *regexp.Regexp) string {
	for _, try := range []struct {
		re *regexp.Regexp
		s  string
	}{{labeled, clean}, {bare, text}} {
		m := try.re.FindStringSubmatch(try.s)
		if m == nil {
			continue
		}
		if v := m[1]; len(v) == n && isDigits(v) {
			return v
		}
	}
	return ""
}

// DetectVATIntracom returns the intra-community VAT number printed on the
// invoice. A French number (FR, two-character key, nine SIREN digits) wins;
// otherwise a labeled or bare EU number of 4 to 14 characters carrying at
// least two digits is accepted. IBANs are ignored.
func DetectVATIntracom(text string) *string {
	upper := strings.ToUpper(text)
	upper = reIBANLike.ReplaceAllStringFunc(upper, func(s string) string {
		if len(strings.ReplaceAll(s, " ", "")) >= minIBANChars {
			return " "
		}
		return s
	})

	if m := reFrenchVAT.FindStringSubmatch(upper); m != nil {
		vat := "FR" + m[1] + m[2] + m[3] + m[4]
		return &vat
	}
	for _, re := range []*regexp.Regexp{reLabeledVAT, reBareVAT} {
		for _, m := range re.FindAllStringSubmatch(upper, -1) {
			if acceptEUVAT(m[1]) {
				vat := m[1]
				return &vat
			}
		}
	}
	return nil
}

func acceptEUVAT(v string) bool {
	if len(v) < minVATLength || len(v) > maxVATLength || !euVATPrefixes[v[:2]] {
		return false
	}
	digits := 0
	for _, r := range v[2:] {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 2
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
