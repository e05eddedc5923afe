package readingquiz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpenAI serves chat completions with the given handler and returns a
// config pointing at it
func fakeOpenAI(t *testing.T, handler func(req openai.ChatCompletionRequest) (int, any)) OpenAIConfig {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	cfg := DefaultConfig().OpenAI
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL + "/v1"
	return cfg
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

func TestNewQuestionMaker_RequiresKey(t *testing.T) {
	_, err := NewQuestionMaker(DefaultConfig().OpenAI)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestQuestionMaker_Generate(t *testing.T) {
	var got openai.ChatCompletionRequest
	cfg := fakeOpenAI(t, func(req openai.ChatCompletionRequest) (int, any) {
		got = req
		return http.StatusOK, completion("\n" + colorBlock + "\n\n")
	})

	qm, err := NewQuestionMaker(cfg)
	require.NoError(t, err)

	text, err := qm.Generate(context.Background(), DefaultGenerationRequest())

	require.NoError(t, err)
	assert.Equal(t, colorBlock, text)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 1200, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "*How the Other Half Lives* by Jacob Riis")
	assert.Contains(t, got.Messages[0].Content, "Generate 4 multiple-choice questions")
	assert.Contains(t, got.Messages[0].Content, "Repeat for Q2 to Q4.")
}

func TestQuestionMaker_GenerateLogsToContextLogger(t *testing.T) {
	cfg := fakeOpenAI(t, func(openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, completion(colorBlock)
	})
	qm, err := NewQuestionMaker(cfg)
	require.NoError(t, err)

	logger, err := NewLLMLogger(t.TempDir(), "quiz-1", DefaultGenerationRequest())
	require.NoError(t, err)

	_, err = qm.Generate(ContextWithLogger(context.Background(), logger), DefaultGenerationRequest())
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "LLM REQUEST (QuestionMaker)")
	assert.Contains(t, string(data), "LLM RESPONSE (QuestionMaker)")
	assert.Contains(t, string(data), "Answer: B")
}

func TestQuestionMaker_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr error
	}{
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    openai.ChatCompletionResponse{ID: "x", Object: "chat.completion"},
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "blank content",
			status:  http.StatusOK,
			body:    completion("   \n"),
			wantErr: ErrEmptyResponse,
		},
		{
			name:   "api error",
			status: http.StatusInternalServerError,
			body:   map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fakeOpenAI(t, func(openai.ChatCompletionRequest) (int, any) {
				return tt.status, tt.body
			})
			qm, err := NewQuestionMaker(cfg)
			require.NoError(t, err)

			_, err = qm.Generate(context.Background(), DefaultGenerationRequest())

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestQuestionMaker_BuildPrompt(t *testing.T) {
	qm := &QuestionMaker{}

	single := qm.buildPrompt(GenerationRequest{Work: "Walden", NumQuestions: 1})
	assert.Contains(t, single, "**text** of *Walden*.")
	assert.NotContains(t, single, "Repeat for")
	assert.Contains(t, single, "Answer: X\nExplanation: ...")

	many := qm.buildPrompt(GenerationRequest{Work: "Walden", Author: "Henry David Thoreau", Section: "Economy", NumQuestions: 6})
	assert.Contains(t, many, "**Economy** of *Walden* by Henry David Thoreau.")
	assert.Contains(t, many, "Repeat for Q2 to Q6.")
}
