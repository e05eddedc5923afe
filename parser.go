package readingquiz

import "strings"

const (
	questionPrefix    = "Q"
	answerPrefix      = "Answer:"
	explanationPrefix = "Explanation:"
)

// scanState is the parser's only state: the lines of the current block,
// whether a question line has opened it, and everything extracted so far.
type scanState struct {
	current []string
	open    bool
	out     ParsedQuiz
}

// Parse splits generated quiz text into question blocks, answer labels and
// explanations. It never fails; malformed input yields shorter sequences.
//
// A line starting with "Q" closes the open block and starts a new one. Lines
// starting with "Answer:" or "Explanation:" are pulled out of the block. Any
// text before the first "Q" line becomes part of the first block; text with
// no "Q" line at all yields no questions.
func Parse(raw string) *ParsedQuiz {
	state := scanState{
		out: ParsedQuiz{
			Questions:    []string{},
			Answers:      []string{},
			Explanations: []string{},
		},
	}

	for _, line := range splitLines(raw) {
		state = state.step(line)
	}
	state = state.flush()

	out := state.out
	// Extra labels have no question to belong to
	if len(out.Answers) > len(out.Questions) {
		out.Answers = out.Answers[:len(out.Questions)]
	}
	if len(out.Explanations) > len(out.Questions) {
		out.Explanations = out.Explanations[:len(out.Questions)]
	}

	VerboseLog("Parsed %d questions, %d answers, %d explanations",
		len(out.Questions), len(out.Answers), len(out.Explanations))
	return &out
}

func (s scanState) step(line string) scanState {
	switch {
	case strings.HasPrefix(line, questionPrefix):
		if s.open {
			s = s.flush()
		}
		s.current = append(s.current, line)
		s.open = true
	case strings.HasPrefix(line, answerPrefix):
		s.out.Answers = append(s.out.Answers, afterPrefix(line, answerPrefix))
	case strings.HasPrefix(line, explanationPrefix):
		s.out.Explanations = append(s.out.Explanations, afterPrefix(line, explanationPrefix))
	default:
		s.current = append(s.current, line)
	}
	return s
}

// flush emits the current block if a question line opened it
func (s scanState) flush() scanState {
	if s.open && len(s.current) > 0 {
		s.out.Questions = append(s.out.Questions, strings.Join(s.current, "\n"))
	}
	s.current = nil
	s.open = false
	return s
}

func afterPrefix(line, prefix string) string {
	_, rest, _ := strings.Cut(line, prefix)
	return strings.TrimSpace(rest)
}

// splitLines accepts \n, \r\n and \r terminators. A trailing terminator does
// not produce an empty final line.
func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	raw = strings.TrimSuffix(raw, "\n")
	return strings.Split(raw, "\n")
}
