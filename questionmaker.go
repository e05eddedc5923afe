package readingquiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// TextSource produces raw quiz text for a reading
type TextSource interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// QuestionMaker generates raw quiz text with an OpenAI chat model
type QuestionMaker struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewQuestionMaker creates a new question maker with OpenAI client
func NewQuestionMaker(cfg OpenAIConfig) (*QuestionMaker, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &QuestionMaker{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate asks the model for a quiz and returns its text unparsed
func (qm *QuestionMaker) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	VerboseLog("Generating %d questions for %s (%s)", req.NumQuestions, req.Work, req.Section)

	prompt := qm.buildPrompt(req)

	logger := LoggerFromContext(ctx)
	logger.LogLLMRequest("QuestionMaker", prompt)

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qm.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: qm.temperature,
			MaxTokens:   qm.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate quiz: %w", err)
	}

	VerboseLog("Received response from %s with %d choices", qm.model, len(resp.Choices))

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices from %s: %w", qm.model, ErrEmptyResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logger.LogLLMResponse("QuestionMaker", content)
	if content == "" {
		return "", fmt.Errorf("blank content from %s: %w", qm.model, ErrEmptyResponse)
	}

	log.Printf("Generated quiz text: %d characters", len(content))
	return content, nil
}

func (qm *QuestionMaker) buildPrompt(req GenerationRequest) string {
	var sb strings.Builder

	title := fmt.Sprintf("*%s*", req.Work)
	if req.Author != "" {
		title += " by " + req.Author
	}
	section := req.Section
	if section == "" {
		section = "text"
	}

	sb.WriteString(fmt.Sprintf("You are a literary expert creating a detailed and challenging quiz based **only** on the **%s** of %s.\n\n", section, title))
	sb.WriteString(fmt.Sprintf("Generate %d multiple-choice questions. Each must:\n", req.NumQuestions))
	sb.WriteString(fmt.Sprintf("- Be highly specific to the %s (not the rest of the book)\n", section))
	sb.WriteString("- Have a short quote as a stimulus for each question\n")
	sb.WriteString("- Include 4 answer choices labeled A–D\n")
	sb.WriteString("- Identify the correct answer using \"Answer: X\"\n")
	sb.WriteString("- Follow with a 3–4 sentence explanation for the correct answer\n\n")

	sb.WriteString("Use this exact format:\n\n")
	sb.WriteString("Q1: [question]\n")
	sb.WriteString("\"Some quote that relates to the question without giving away any answers\"\n")
	sb.WriteString("A. ...\nB. ...\nC. ...\nD. ...\n")
	sb.WriteString("Answer: X\n")
	sb.WriteString("Explanation: ...\n\n")

	if req.NumQuestions > 1 {
		sb.WriteString(fmt.Sprintf("Repeat for Q2 to Q%d. ", req.NumQuestions))
	}
	sb.WriteString("Do not include summaries, quotes, or extra commentary.\n")

	return sb.String()
}
