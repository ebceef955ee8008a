package parse

import "strings"

// CleanText normalizes raw extractor output before parsing: unified
// line endings, invisible unicode stripped, per-line whitespace
// collapsed, runs of blank lines bounded.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			return -1
		case '\u00a0':
			return ' '
		case '\u00ad':
			return -1
		default:
			return r
		}
	}, text)

	lines := strings.Split(text, "\n")
	var cleaned []string
	consecutiveEmpty := 0

	for _, line := range lines {
		line = strings.TrimRight(line, " \t")

		if strings.TrimSpace(line) == "" {
			consecutiveEmpty++
			if consecutiveEmpty <= 2 {
				cleaned = append(cleaned, "")
			}
			continue
		}

		consecutiveEmpty = 0

		words := strings.Fields(line)
		cleaned = append(cleaned, strings.Join(words, " "))
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// nonEmptyLines splits into trimmed, non-empty lines.
func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
