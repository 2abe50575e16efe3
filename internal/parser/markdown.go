package parser

import (
	"regexp"
	"strings"
)

type markdownParser struct{}

var (
	mdFence  = regexp.MustCompile("^\\s*(```|~~~)")
	mdPrefix = regexp.MustCompile(`^\s*(#{1,6}\s+|[-*+]\s+|\d+[.)]\s+|>\s*)`)
)

func (markdownParser) CanParse(filename string) bool { return hasExt(filename, ".md", ".markdown") }

// Parse drops fenced code blocks and leading block markers so only prose remains.
func (markdownParser) Parse(content []byte) (string, error) {
	lines := strings.Split(normalizeNewlines(content), "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	for _, line := range lines {
		if mdFence.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		out = append(out, mdPrefix.ReplaceAllString(line, ""))
	}
	return strings.Join(out, "\n"), nil
}
