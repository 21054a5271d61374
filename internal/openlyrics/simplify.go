package openlyrics

import (
	"strings"
	"unicode"
)

// SimplifyContents flattens verse contents into display lines, ignoring
// chords, tags and comments.
func SimplifyContents(contents Contents) []string {
	var lines []string
	lines = appendSimpleContents(lines, contents)
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

func appendSimpleContents(lines []string, contents Contents) []string {
	for _, content := range contents {
		switch c := content.(type) {
		case Text:
			if len(lines) == 0 {
				lines = append(lines, "")
			}
			text := strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return ' '
				}
				return r
			}, string(c))
			last := len(lines) - 1
			lines[last] += strings.TrimSpace(text)
			if strings.HasSuffix(text, " ") {
				lines[last] += " "
			}
		case *Chord:
			lines = appendSimpleContents(lines, c.Contents)
		case *Tag:
			lines = appendSimpleContents(lines, c.Contents)
		case Br:
			lines = append(lines, "")
		}
	}
	return lines
}
