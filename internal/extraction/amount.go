package extraction

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrUnparseableAmount is returned when a numeric substring cannot be read as
// a currency amount. Callers recover by substituting their own default.
var ErrUnparseableAmount = errors.New("unparseable amount")

var (
	reCurrencyMark = regexp.MustCompile(`(?i)[€$£]|eur|usd|gbp`)
	reBareDecimal  = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	separators     = strings.NewReplacer(",", "", ".", "")
)

// Money is a normalised amount with the currency detected next to it.
type Money struct {
	Value    decimal.Decimal
	Currency string
}

// CurrencyFromSymbol maps a currency symbol or code to its ISO code. Unknown
// marks fall back to EUR.
func CurrencyFromSymbol(sym string) string {
	switch strings.ToLower(strings.TrimSpace(sym)) {
	case "$", "usd":
		return "USD"
	case "£", "gbp":
		return "GBP"
	default:
		return "EUR"
	}
}

// NormalizeAmount parses a locale-formatted amount such as "1 234,56 €" and
// reports the currency it carries.
func NormalizeAmount(raw string) (Money, error) {
	currency := "EUR"
	if mark := reCurrencyMark.FindString(raw); mark != "" {
		currency = CurrencyFromSymbol(mark)
	}
	v, err := ParseAmount(raw)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: v, Currency: currency}, nil
}

// ParseAmount parses a numeric substring into an exact value rounded half-up
// to two decimals.
//
// Spaces are thousands separators. When both ',' and '.' occur, the last one
// is the decimal point and the other is dropped, so "1,250.50" reads as
// 1250.50 and "1.250,50" as 1250.50. A single lone separator of either kind
// is the decimal point ("1,234" is 1.234); a separator repeated with no other
// kind present only groups thousands.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := reCurrencyMark.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = normalizeSeparators(s)
	if !reBareDecimal.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseableAmount, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrUnparseableAmount, raw, err)
	}
	return d.Round(2), nil
}

// AmountOr parses raw and returns def when it cannot be read.
func AmountOr(raw string, def float64) float64 {
	d, err := ParseAmount(raw)
	if err != nil {
		return def
	}
	return d.InexactFloat64()
}

func normalizeSeparators(s string) string {
	commas, dots := strings.Count(s, ","), strings.Count(s, ".")
	var dec string
	switch {
	case commas > 0 && dots > 0:
		dec = "."
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			dec = ","
		}
	case commas == 1:
		dec = ","
	case dots == 1:
		dec = "."
	default:
		return separators.Replace(s)
	}
	i := strings.LastIndex(s, dec)
	return separators.Replace(s[:i]) + "." + s[i+1:]
}

// round2 rounds half-up to cents going through an exact decimal.
func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// subtract returns round(a - b, 2) without float drift.
func subtract(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// divide returns round(a / b, 2). b must be non-zero.
func divide(a, b float64) float64 {
	return decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}
