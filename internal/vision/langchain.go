package vision

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainModel implements Model on top of any langchaingo llms.Model.
type LangChainModel struct {
	LLM       llms.Model
	MaxTokens int
}

// NewOpenAIModel builds an OpenAI-compatible model (OpenAI, OpenRouter).
func NewOpenAIModel(apiKey, modelName, baseURL string) (*LangChainModel, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &LangChainModel{LLM: llm, MaxTokens: defaultAnthropicMaxTokens}, nil
}

func (m *LangChainModel) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := m.LLM.GenerateContent(ctx, buildMessages(req), llms.WithMaxTokens(m.MaxTokens))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func buildMessages(req Request) []llms.MessageContent {
	var messages []llms.MessageContent
	if req.System != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}

	for _, t := range mergeTurns(req.History) {
		role := llms.ChatMessageTypeHuman
		if t.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(t.Text)},
		})
	}

	var parts []llms.ContentPart
	if len(req.Image) > 0 {
		parts = append(parts, llms.BinaryPart("image/png", req.Image))
	}
	parts = append(parts, llms.TextPart(req.Instruction))
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: parts,
	})
	return messages
}
