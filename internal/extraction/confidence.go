package extraction

import (
	"math"
	"unicode/utf8"
)

// Context qualities: how reliable each extraction strategy is on its own.
const (
	QualityAmount        = 0.9
	QualityDerived       = 0.85
	QualityDate          = 0.95
	QualityLabeledNumber = 0.9
	QualityBareNumber    = 0.7
	QualityLabeledParty  = 0.85
	QualityFallbackParty = 0.6
	QualityItems         = 0.8
	QualityStructured    = 0.9
)

const (
	baseConfidence      = 0.7
	confidencePerMatch  = 0.1
	maxCorroboratedBase = 0.95
	plausibilityBonus   = 0.05
)

// Score rates an extracted value in [0,1]. Nil and empty values score 0. The
// base grows with the number of corroborating matches, is weighted by the
// strategy quality and gets a small bonus for a positive amount or a
// non-trivial string.
func Score(value any, matchCount int, quality float64) float64 {
	if isEmpty(value) {
		return 0
	}
	base := math.Min(baseConfidence+confidencePerMatch*float64(matchCount), maxCorroboratedBase)
	s := base * quality
	if plausible(value) {
		s = math.Min(s+plausibilityBonus, 1)
	}
	return round2(math.Max(s, 0))
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *float64:
		return v == nil
	case *string:
		return v == nil || *v == ""
	case string:
		return v == ""
	case []LineItem:
		return len(v) == 0
	case []DetectedTable:
		return len(v) == 0
	case *BankingInfo:
		return v.Found() == 0
	}
	return false
}

func plausible(value any) bool {
	switch v := value.(type) {
	case float64:
		return v > 0
	case *float64:
		return *v > 0
	case string:
		return utf8.RuneCountInString(v) > 2
	case *string:
		return utf8.RuneCountInString(*v) > 2
	}
	return false
}
