package extraction

import "strings"

const (
	maxTableRows    = 30
	maxTableColumns = 5
	minHeaderGroups = 2
)

// detectTables finds header lines naming at least two column kinds and
// captures the rows below them until a blank or total line. Layout tokens are
// accepted for engines that provide them but the split is purely textual.
func (p *PatternLibrary) detectTables(text string, _ []Token) []DetectedTable {
	raw := rawLines(text)
	var tables []DetectedTable
	for i := 0; i < len(raw); i++ {
		if !p.isTableHeader(raw[i]) {
			continue
		}
		header := p.splitColumns(raw[i])
		if len(header) > maxTableColumns {
			header = header[:maxTableColumns]
		}
		if len(header) < 2 {
			continue
		}

		t := DetectedTable{Header: header}
		j := i + 1
		for ; j < len(raw) && j <= i+maxTableRows; j++ {
			if raw[j] == "" || p.tableEnd.MatchString(raw[j]) {
				break
			}
			if row := tableRow(header, p.splitColumns(raw[j])); len(row) > 0 {
				t.Rows = append(t.Rows, row)
			}
		}
		if len(t.Rows) > 0 {
			tables = append(tables, t)
		}
		i = j - 1
	}
	return tables
}

func (p *PatternLibrary) isTableHeader(line string) bool {
	groups := 0
	for _, re := range p.tableGroups {
		if re.MatchString(line) {
			groups++
		}
	}
	return groups >= minHeaderGroups
}

// splitColumns splits on pipes, then on runs of two or more spaces, then on
// any whitespace.
func (p *PatternLibrary) splitColumns(line string) []string {
	var parts []string
	switch {
	case strings.Contains(line, "|"):
		parts = strings.Split(line, "|")
	case p.columnGap.MatchString(line):
		parts = p.columnGap.Split(line, -1)
	default:
		parts = strings.Fields(line)
	}
	cells := parts[:0]
	for _, c := range parts {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// tableRow maps cells onto header columns. Surplus cells are folded into the
// last column.
func tableRow(header, cells []string) map[string]string {
	row := make(map[string]string, len(header))
	for k, c := range cells {
		if k >= len(header)-1 {
			last := header[len(header)-1]
			if row[last] != "" {
				c = row[last] + " " + c
			}
			row[last] = c
			continue
		}
		row[header[k]] = c
	}
	return row
}
