package readingquiz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes every model interaction of one quiz to its own file
type LLMLogger struct {
	file   *os.File
	mu     sync.Mutex
	quizID string
	path   string
}

// NewLLMLogger creates a log file named after quizID inside dir
func NewLLMLogger(dir, quizID string, req GenerationRequest) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", quizID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:   file,
		quizID: quizID,
		path:   filename,
	}

	logger.Logf("=== Quiz Generation Log ===\n")
	logger.Logf("Quiz ID: %s\n", quizID)
	logger.Logf("Work: %s\n", req.Work)
	if req.Author != "" {
		logger.Logf("Author: %s\n", req.Author)
	}
	logger.Logf("Section: %s\n", req.Section)
	logger.Logf("Number of Questions: %d\n", req.NumQuestions)
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

type loggerKey struct{}

// ContextWithLogger returns a context carrying logger for the generation it scopes
func ContextWithLogger(ctx context.Context, logger *LLMLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger set by ContextWithLogger, or nil.
// All LLMLogger methods are no-ops on a nil receiver.
func LoggerFromContext(ctx context.Context) *LLMLogger {
	logger, _ := ctx.Value(loggerKey{}).(*LLMLogger)
	return logger
}

// Path returns the log file location
func (ll *LLMLogger) Path() string {
	if ll == nil {
		return ""
	}
	return ll.path
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	if ll == nil {
		return
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.logf(format, args...)
}

func (ll *LLMLogger) logf(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogParseResult records how much structure was recovered from one response
func (ll *LLMLogger) LogParseResult(attempt int, p *ParsedQuiz) {
	if ll == nil {
		return
	}
	ll.Logf("Attempt %d: %d questions, %d answers, %d explanations\n",
		attempt, len(p.Questions), len(p.Answers), len(p.Explanations))
	if len(p.Answers) < len(p.Questions) || len(p.Explanations) < len(p.Questions) {
		ll.Logf("Attempt %d: answer key shorter than question list\n", attempt)
	}
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	if ll == nil {
		return nil
	}
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.logf("=== Quiz Generation Complete ===\n")
	ll.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
	ll.logf("=============================\n")
	err := ll.file.Close()
	ll.file = nil
	return err
}
