package extraction

import "strings"

// extractDate returns the first date-looking substring, kept verbatim.
func (p *PatternLibrary) extractDate(text string) (*string, int) {
	v, ok := p.dates.first(text, func(s string) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	if !ok {
		return nil, 0
	}
	return strPtr(v), p.dates.hits(text)
}
