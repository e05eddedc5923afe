package readingquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	tests := map[string]string{
		"B":      "B",
		" b ":    "B",
		"c.":     "C",
		"d)":     "D",
		"a. ":    "A",
		"":       "",
		"  ":     "",
		"b) Red": "B) RED",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeLabel(in), "NormalizeLabel(%q)", in)
	}
}

func TestValidLabel(t *testing.T) {
	for _, label := range []string{"A", "b", " C ", "d.", "a)"} {
		assert.True(t, ValidLabel(label), label)
	}
	for _, label := range []string{"", "E", "AB", "1", "yes"} {
		assert.False(t, ValidLabel(label), label)
	}
}

func TestGrade(t *testing.T) {
	p := &ParsedQuiz{
		Questions:    []string{"Q1: a", "Q2: b", "Q3: c", "Q4: d"},
		Answers:      []string{"B", "a", "D", "C"},
		Explanations: []string{"e1", "e2", "e3", "e4"},
	}

	score := Grade(p, []string{"b", " A ", "C", ""})

	require.Len(t, score.Results, 4)
	assert.Equal(t, 4, score.Total)
	assert.Equal(t, 2, score.Correct)
	assert.InDelta(t, 50.0, score.Percent(), 0.001)

	assert.Equal(t, Result{Number: 1, UserAnswer: "B", CorrectAnswer: "B", Explanation: "e1", Correct: true}, score.Results[0])
	assert.True(t, score.Results[1].Correct)
	assert.False(t, score.Results[2].Correct)
	assert.Equal(t, "D", score.Results[2].CorrectAnswer)
	assert.False(t, score.Results[3].Correct)
	assert.Equal(t, "", score.Results[3].UserAnswer)
}

func TestGrade_ShortAnswerKey(t *testing.T) {
	p := &ParsedQuiz{
		Questions:    []string{"Q1: a", "Q2: b", "Q3: c"},
		Answers:      []string{"A", "B"},
		Explanations: []string{"only one"},
	}

	score := Grade(p, []string{"A", "B", "C"})

	assert.Equal(t, 2, score.Total)
	assert.Equal(t, 2, score.Correct)
	assert.Equal(t, "only one", score.Results[0].Explanation)
	assert.Equal(t, "", score.Results[1].Explanation)
}

func TestGrade_MissingUserAnswers(t *testing.T) {
	p := Parse("Q1: foo\nA. a\nB. b\nC. c\nD. d\nAnswer: A\nQ2: bar\nA. a\nB. b\nC. c\nD. d\nAnswer: C")

	score := Grade(p, []string{"a"})

	assert.Equal(t, 2, score.Total)
	assert.Equal(t, 1, score.Correct)
	assert.False(t, score.Results[1].Correct)
}

func TestGrade_NoQuestions(t *testing.T) {
	score := Grade(Parse(""), []string{"A"})

	assert.Equal(t, 0, score.Total)
	assert.Empty(t, score.Results)
	assert.Equal(t, 0.0, score.Percent())
}
