package readingquiz

import "strings"

// NormalizeLabel prepares an answer label for comparison: surrounding space is
// removed, letters are uppercased and a trailing "." or ")" is dropped, so
// " b) " and "B" compare equal.
func NormalizeLabel(label string) string {
	label = strings.ToUpper(strings.TrimSpace(label))
	label = strings.TrimRight(label, ".)")
	return strings.TrimSpace(label)
}

// ValidLabel reports whether label normalizes to one of the four choice letters
func ValidLabel(label string) bool {
	switch NormalizeLabel(label) {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// Grade checks user answers against the parsed answer key. Only questions that
// have an extracted answer are graded; a missing user answer counts as wrong.
func Grade(p *ParsedQuiz, userAnswers []string) *Score {
	n := min(len(p.Questions), len(p.Answers))
	score := &Score{
		Results: make([]Result, 0, n),
		Total:   n,
	}

	for i := 0; i < n; i++ {
		var user string
		if i < len(userAnswers) {
			user = NormalizeLabel(userAnswers[i])
		}
		correct := NormalizeLabel(p.Answers[i])

		var explanation string
		if i < len(p.Explanations) {
			explanation = p.Explanations[i]
		}

		result := Result{
			Number:        i + 1,
			UserAnswer:    user,
			CorrectAnswer: correct,
			Explanation:   explanation,
			Correct:       user != "" && user == correct,
		}
		if result.Correct {
			score.Correct++
		}
		score.Results = append(score.Results, result)
	}

	if n < len(p.Questions) {
		VerboseLog("Graded %d of %d questions; answer key is short", n, len(p.Questions))
	}
	return score
}
