package extraction

import "strings"

// Lines is the trimmed, non-empty line sequence of an OCR text. Extractors
// address lines by position, e.g. "the line after a label".
type Lines []string

// SplitLines splits raw OCR text on newlines, trimming every line and dropping
// the blank ones.
func SplitLines(text string) Lines {
	raw := strings.Split(text, "\n")
	lines := make(Lines, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Head returns at most the first n lines.
func (l Lines) Head(n int) Lines {
	if n > len(l) {
		n = len(l)
	}
	return l[:n]
}

// Window returns lines[from:to] clamped to the sequence bounds.
func (l Lines) Window(from, to int) Lines {
	if from < 0 {
		from = 0
	}
	if to > len(l) {
		to = len(l)
	}
	if from >= to {
		return nil
	}
	return l[from:to]
}

// Join rebuilds a text block from the lines.
func (l Lines) Join() string {
	return strings.Join(l, "\n")
}

// rawLines keeps blank lines so that table capture can stop on them.
func rawLines(text string) []string {
	raw := strings.Split(text, "\n")
	for i := range raw {
		raw[i] = strings.TrimSpace(raw[i])
	}
	return raw
}
