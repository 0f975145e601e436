package extraction

// totals is the outcome of the three amount searches over the lowercased
// text, with the per-cascade hit counts used for scoring.
type totals struct {
	total, ht, ttc *float64
	currency       string

	hitsTotal, hitsHT, hitsTTC int
}

func (p *PatternLibrary) extractTotals(lower string) totals {
	var t totals
	var curTotal, curHT, curTTC string
	t.total, curTotal, t.hitsTotal = amountField(p.total, lower)
	t.ht, curHT, t.hitsHT = amountField(p.totalHT, lower)
	t.ttc, curTTC, t.hitsTTC = amountField(p.totalTTC, lower)

	for _, c := range []string{curTotal, curTTC, curHT} {
		if c != "" {
			t.currency = c
			break
		}
	}
	return t
}

// amountField returns the first amount of the cascade that parses, the
// currency written next to it (empty when none) and the cascade hit count.
// A capture that fails to parse moves the search on to the next match.
func amountField(c cascade, lower string) (*float64, string, int) {
	hits := c.hits(lower)
	for _, re := range c {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			money, err := NormalizeAmount(m[1] + " " + m[2])
			if err != nil {
				continue
			}
			var currency string
			if m[2] != "" {
				currency = money.Currency
			}
			return floatPtr(money.Value.InexactFloat64()), currency, hits
		}
	}
	return nil, "", hits
}

// deriveTVA computes ttc - ht. It is nil unless both amounts are known.
func deriveTVA(ht, ttc *float64) *float64 {
	if ht == nil || ttc == nil {
		return nil
	}
	return floatPtr(subtract(*ttc, *ht))
}
