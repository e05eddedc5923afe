package readingquiz

import (
	"context"
	"sync"
)

// QuizPool holds quizzes generated ahead of demand. The web server fills it
// in the background after each hand-out, and a POST /quiz takes the oldest
// entry before falling back to generating inline. A quiz leaves the pool the
// moment it is handed out; the session then tracks it by ID.
type QuizPool struct {
	mu      sync.RWMutex
	quizzes map[string]*Quiz
	queue   []string // FIFO queue of quiz IDs
}

// NewQuizPool creates a new quiz pool
func NewQuizPool() *QuizPool {
	return &QuizPool{
		quizzes: make(map[string]*Quiz),
		queue:   make([]string, 0),
	}
}

// Add adds a quiz to the pool
func (qp *QuizPool) Add(quiz *Quiz) {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if _, exists := qp.quizzes[quiz.ID]; exists {
		return
	}
	qp.quizzes[quiz.ID] = quiz
	qp.queue = append(qp.queue, quiz.ID)
}

// Get removes and returns the oldest quiz, or nil when the pool is empty
func (qp *QuizPool) Get() *Quiz {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if len(qp.queue) == 0 {
		return nil
	}

	quizID := qp.queue[0]
	qp.queue = qp.queue[1:]

	quiz := qp.quizzes[quizID]
	delete(qp.quizzes, quizID)

	return quiz
}

// Size returns the number of quizzes in the pool
func (qp *QuizPool) Size() int {
	qp.mu.RLock()
	defer qp.mu.RUnlock()
	return len(qp.queue)
}

// IsEmpty reports whether a request would have to wait on the model
func (qp *QuizPool) IsEmpty() bool {
	return qp.Size() == 0
}

// Fill generates quizzes until the pool holds target of them. It stops at the
// first generation error.
func (qp *QuizPool) Fill(ctx context.Context, gen *QuizGenerator, req GenerationRequest, target int) error {
	for qp.Size() < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		quiz, err := gen.GenerateQuiz(ctx, req)
		if err != nil {
			return err
		}
		qp.Add(quiz)
		VerboseLog("Prefetched quiz %s, pool size %d/%d", quiz.ID, qp.Size(), target)
	}
	return nil
}
