package readingquiz

import (
	"regexp"
	"strings"
)

var questionMarker = regexp.MustCompile(`Q\d+:`)

var choiceReplacer = strings.NewReplacer(
	"\nA.", "\n- **A.**",
	"\nB.", "\n- **B.**",
	"\nC.", "\n- **C.**",
	"\nD.", "\n- **D.**",
)

// FormatQuestion adds markdown emphasis to a raw question block: question
// markers become bold and choice lines become bold list items.
// Apply it once per block; formatting twice wraps the markers again.
func FormatQuestion(block string) string {
	block = questionMarker.ReplaceAllString(block, "**$0**")
	return choiceReplacer.Replace(block)
}

// FormatQuiz formats every question block of p in order
func FormatQuiz(p *ParsedQuiz) []string {
	formatted := make([]string, len(p.Questions))
	for i, q := range p.Questions {
		formatted[i] = FormatQuestion(q)
	}
	return formatted
}
