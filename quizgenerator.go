package readingquiz

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// GenerationRecorder stores generation events. *DB implements it.
type GenerationRecorder interface {
	RecordGeneration(g *DBGeneration) error
}

// QuizGenerator turns model output into parsed quizzes, retrying when a reply
// has no recognizable questions
type QuizGenerator struct {
	source      TextSource
	recorder    GenerationRecorder
	maxAttempts int
	logDir      string
}

// NewQuizGenerator creates a new quiz generator reading text from source
func NewQuizGenerator(source TextSource, maxAttempts int) *QuizGenerator {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &QuizGenerator{
		source:      source,
		maxAttempts: maxAttempts,
	}
}

// SetRecorder makes the generator record every quiz it produces
func (qg *QuizGenerator) SetRecorder(recorder GenerationRecorder) {
	qg.recorder = recorder
}

// SetLogDir enables per-quiz LLM interaction logs under dir
func (qg *QuizGenerator) SetLogDir(dir string) {
	qg.logDir = dir
}

// GenerateQuiz fetches raw text and parses it into a quiz. It returns
// ErrNoQuestions when every attempt came back without a question block.
func (qg *QuizGenerator) GenerateQuiz(ctx context.Context, req GenerationRequest) (*Quiz, error) {
	quizID := uuid.NewString()
	log.Printf("Starting quiz generation %s for %s (%s), target questions: %d", quizID, req.Work, req.Section, req.NumQuestions)

	if qg.logDir != "" {
		logger, err := NewLLMLogger(qg.logDir, quizID, req)
		if err != nil {
			log.Printf("Failed to create logger for quiz %s: %v", quizID, err)
		} else {
			defer logger.Close()
			ctx = ContextWithLogger(ctx, logger)
		}
	}
	logger := LoggerFromContext(ctx)

	for attempt := 1; attempt <= qg.maxAttempts; attempt++ {
		raw, err := qg.source.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to generate quiz: %w", err)
		}

		parsed := Parse(raw)
		logger.LogParseResult(attempt, parsed)

		if len(parsed.Questions) == 0 {
			log.Printf("Attempt %d/%d for quiz %s produced no questions", attempt, qg.maxAttempts, quizID)
			continue
		}

		quiz := &Quiz{
			ID:        quizID,
			Request:   req,
			Raw:       raw,
			Parsed:    parsed,
			CreatedAt: time.Now(),
			Attempts:  attempt,
		}
		qg.record(quiz)

		log.Printf("Quiz generation complete: %s with %d questions, %d answers, %d explanations",
			quiz.ID, len(parsed.Questions), len(parsed.Answers), len(parsed.Explanations))
		return quiz, nil
	}

	if path := logger.Path(); path != "" {
		return nil, fmt.Errorf("quiz %s after %d attempts, raw replies in %s: %w", quizID, qg.maxAttempts, path, ErrNoQuestions)
	}
	return nil, fmt.Errorf("quiz %s after %d attempts: %w", quizID, qg.maxAttempts, ErrNoQuestions)
}

// record failures never fail the generation
func (qg *QuizGenerator) record(quiz *Quiz) {
	if qg.recorder == nil {
		return
	}
	if err := qg.recorder.RecordGeneration(NewDBGeneration(quiz)); err != nil {
		log.Printf("Failed to record generation %s: %v", quiz.ID, err)
	}
}
