package readingquiz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatQuestion(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  string
	}{
		{
			name:  "full block",
			block: "Q1: What color?\n\"The sky was blue.\"\nA. Red\nB. Blue\nC. Green\nD. Yellow",
			want:  "**Q1:** What color?\n\"The sky was blue.\"\n- **A.** Red\n- **B.** Blue\n- **C.** Green\n- **D.** Yellow",
		},
		{
			name:  "multi-digit number",
			block: "Q12: Which year?",
			want:  "**Q12:** Which year?",
		},
		{
			name:  "marker in the middle of a line",
			block: "See Q3: for context",
			want:  "See **Q3:** for context",
		},
		{
			name:  "choice label on first line is untouched",
			block: "A. not a choice\nB. a choice",
			want:  "A. not a choice\n- **B.** a choice",
		},
		{
			name:  "other letters are untouched",
			block: "Q1: x\nE. extra\na. lower",
			want:  "**Q1:** x\nE. extra\na. lower",
		},
		{
			name:  "Q without digits",
			block: "Q: x\nQA: y",
			want:  "Q: x\nQA: y",
		},
		{
			name:  "empty",
			block: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatQuestion(tt.block))
		})
	}
}

func TestFormatQuestion_OnlyInsertsMarkup(t *testing.T) {
	p := Parse(colorBlock + "\nQ2: Where?\n\"Quote Q9: inline\"\nA. Here\nB. There\nC. Nowhere\nD. Everywhere\nAnswer: A")
	require.Len(t, p.Questions, 2)

	for _, block := range p.Questions {
		formatted := FormatQuestion(block)

		markers := len(questionMarker.FindAllString(block, -1))
		for _, label := range []string{"\nA.", "\nB.", "\nC.", "\nD."} {
			markers += strings.Count(block, label)
		}
		// each marker gains one opening and one closing "**"
		assert.Equal(t, strings.Count(block, "**")+2*markers, strings.Count(formatted, "**"))

		stripped := strings.ReplaceAll(formatted, "\n- **", "\n**")
		stripped = strings.ReplaceAll(stripped, "**", "")
		assert.Equal(t, block, stripped)
	}
}

func TestFormatQuestion_NotIdempotent(t *testing.T) {
	once := FormatQuestion("Q1: x\nA. y")
	twice := FormatQuestion(once)

	assert.NotEqual(t, once, twice)
	assert.Equal(t, "****Q1:**** x\n- **A.** y", twice)
}

func TestFormatQuiz(t *testing.T) {
	p := Parse("Q1: a\nA. x\nAnswer: A\nQ2: b\nB. y\nAnswer: B")

	formatted := FormatQuiz(p)

	assert.Equal(t, []string{"**Q1:** a\n- **A.** x", "**Q2:** b\n- **B.** y"}, formatted)
	assert.Empty(t, FormatQuiz(Parse("")))
}
