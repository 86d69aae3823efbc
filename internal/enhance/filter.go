package enhance

import (
	"regexp"
	"strings"
)

var leadingBoilerplateRe = regexp.MustCompile(`(?i)^(here('|’)s|here is|sure[,!]? here('|’)s)\b[^\n]*:\s*\n+`)

// FilterOutput strips model boilerplate from an enhancement result: a code
// fence wrapping the whole reply, a leading "Here's the ...:" line, and
// quotes the model added around the text.
func FilterOutput(text string) string {
	text = strings.TrimSpace(text)

	// Whole-reply code fence, with or without a language tag.
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		inner := strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
		if nl := strings.Index(inner, "\n"); nl >= 0 {
			inner = inner[nl+1:]
		}
		text = strings.TrimSpace(inner)
	}

	text = leadingBoilerplateRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	// Surrounding quote pairs added by the model.
	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}} {
		if len(text) >= 2 && strings.HasPrefix(text, pair[0]) && strings.HasSuffix(text, pair[1]) {
			text = strings.TrimSpace(text[len(pair[0]) : len(text)-len(pair[1])])
			break
		}
	}
	return text
}
