package readingquiz

import (
	"errors"
	"time"
)

var (
	// ErrNoQuestions is returned when generated text contains no question blocks
	ErrNoQuestions = errors.New("no questions found in generated text")
	// ErrEmptyResponse is returned when the model replies with no usable content
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrNotFound is returned by lookups in the generation store
	ErrNotFound = errors.New("not found")
	// ErrMissingAPIKey is returned when no OpenAI key is configured
	ErrMissingAPIKey = errors.New("OpenAI API key is required")
)

// ParsedQuiz holds the three ordered sequences extracted from raw quiz text.
// Answers and Explanations are positionally aligned with Questions and may be shorter.
type ParsedQuiz struct {
	Questions    []string `json:"questions"`
	Answers      []string `json:"answers"`
	Explanations []string `json:"explanations"`
}

// Quiz is one generation event: the raw model output and what was parsed from it
type Quiz struct {
	ID        string            `json:"id"`
	Request   GenerationRequest `json:"request"`
	Raw       string            `json:"raw"`
	Parsed    *ParsedQuiz       `json:"parsed"`
	CreatedAt time.Time         `json:"created_at"`
	Attempts  int               `json:"attempts"`
}

// GenerationRequest describes the reading the quiz is generated for
type GenerationRequest struct {
	Work         string `json:"work" yaml:"work"`
	Author       string `json:"author" yaml:"author"`
	Section      string `json:"section" yaml:"section"`
	NumQuestions int    `json:"num_questions" yaml:"num_questions"`
}

// DefaultGenerationRequest returns the reading the original quiz was built around
func DefaultGenerationRequest() GenerationRequest {
	return GenerationRequest{
		Work:         "How the Other Half Lives",
		Author:       "Jacob Riis",
		Section:      "Introduction",
		NumQuestions: 4,
	}
}

// Result is the outcome of checking one user answer
type Result struct {
	Number        int    `json:"number"` // 1-based
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Correct       bool   `json:"correct"`
}

// Score tallies a set of checked answers
type Score struct {
	Results []Result `json:"results"`
	Correct int      `json:"correct"`
	Total   int      `json:"total"`
}

// Percent returns the share of correct answers in the range 0-100
func (s *Score) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}
