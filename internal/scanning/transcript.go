package scanning

import (
	"errors"
	"strings"
)

// ErrEmptyTranscription is returned when a model answers without any text.
var ErrEmptyTranscription = errors.New("empty transcription")

// cleanTranscription strips markdown fences and trailing whitespace from a
// model transcription. Blank lines are kept since they delimit tables.
func cleanTranscription(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		// Drop the opening fence with its optional info string
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return "", ErrEmptyTranscription
	}
	return text, nil
}
