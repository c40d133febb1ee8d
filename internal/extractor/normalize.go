package extractor

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds compatibility characters (PDF ligatures such as "ﬁ"),
// drops control characters other than newline and tab, and removes blank
// lines.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	t := transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(isStrippable)))
	if folded, _, err := transform.String(t, text); err == nil {
		text = folded
	}

	lines := strings.Split(text, "\n")

	var cleanedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

func isStrippable(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t'
}
