package extraction

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	itemWindow       = 15
	clientItemOffset = 5
	maxItemNumbers   = 3
)

// extractItems locates the billed rows between an item header and the first
// total line, then reads every row as a description followed by up to three
// numbers.
func (p *PatternLibrary) extractItems(lines Lines) []LineItem {
	start := p.itemsStart(lines)
	if start < 0 || start >= len(lines) {
		return nil
	}
	end := min(start+itemWindow, len(lines))
	for i := start; i < len(lines); i++ {
		if p.itemEnd.MatchString(lines[i]) {
			end = i
			break
		}
	}

	var items []LineItem
	for k, l := range lines.Window(start, end) {
		if k == 0 && p.isItemHeader(l) {
			continue
		}
		if p.itemSkip.MatchString(l) {
			continue
		}
		if item, ok := p.parseItemLine(l); ok {
			items = append(items, item)
		}
	}
	return items
}

func (p *PatternLibrary) isItemHeader(line string) bool {
	return p.itemDescHeader.MatchString(line) && p.itemAmountHeader.MatchString(line)
}

// itemsStart is the index of the first row: the line after an item header,
// or five lines after a "client:" line. It is -1 when neither exists.
func (p *PatternLibrary) itemsStart(lines Lines) int {
	for i, l := range lines {
		if p.isItemHeader(l) {
			return i + 1
		}
	}
	for i, l := range lines {
		if strings.Contains(strings.ToLower(l), "client") && strings.Contains(l, ":") {
			return i + clientItemOffset
		}
	}
	return -1
}

// parseItemLine reads "description n1 n2 n3". With three numbers they are
// quantity, unit price and total. With two, a small integral first number is
// a quantity and the unit price is derived; otherwise they are unit price and
// total. A single number is the total.
func (p *PatternLibrary) parseItemLine(line string) (LineItem, bool) {
	locs := p.number.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return LineItem{}, false
	}
	if len(locs) > maxItemNumbers {
		locs = locs[len(locs)-maxItemNumbers:]
	}
	desc := cleanDescription(line[:locs[0][0]])
	if utf8.RuneCountInString(desc) < 3 {
		return LineItem{}, false
	}

	nums := make([]float64, len(locs))
	for i, loc := range locs {
		nums[i] = AmountOr(line[loc[0]:loc[1]], 0)
	}

	item := LineItem{Description: desc, Quantity: floatPtr(1)}
	switch len(nums) {
	case 3:
		item.Quantity = floatPtr(nums[0])
		item.UnitPrice = floatPtr(nums[1])
		item.Total = floatPtr(nums[2])
	case 2:
		if nums[0] < 100 && nums[0] == math.Trunc(nums[0]) {
			item.Quantity = floatPtr(nums[0])
			item.Total = floatPtr(nums[1])
			if nums[0] > 0 {
				item.UnitPrice = floatPtr(divide(nums[1], nums[0]))
			}
		} else {
			item.UnitPrice = floatPtr(nums[0])
			item.Total = floatPtr(nums[1])
		}
	default:
		item.Total = floatPtr(nums[0])
	}
	return item, true
}

// cleanDescription trims bullets and separators and collapses inner spaces.
func cleanDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -:|*•")
}
