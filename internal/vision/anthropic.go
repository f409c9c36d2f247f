package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel     = "claude-3-opus-20240229"
	defaultAnthropicMaxTokens = 1000
)

// AnthropicModel implements Model with the official Anthropic SDK.
type AnthropicModel struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicModel creates a client for modelName. Extra options (for
// example option.WithBaseURL) are passed to the SDK.
func NewAnthropicModel(apiKey, modelName string, opts ...option.RequestOption) (*AnthropicModel, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, fmt.Errorf("anthropic client requires an API key")
	}
	model := strings.TrimSpace(modelName)
	if model == "" {
		model = defaultAnthropicModel
	}

	opts = append([]option.RequestOption{option.WithAPIKey(key)}, opts...)
	return &AnthropicModel{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: defaultAnthropicMaxTokens,
	}, nil
}

func (m *AnthropicModel) Complete(ctx context.Context, req Request) (string, error) {
	msg, err := m.client.Messages.New(ctx, m.buildParams(req))
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}

func (m *AnthropicModel) buildParams(req Request) anthropic.MessageNewParams {
	var messages []anthropic.MessageParam
	for _, t := range mergeTurns(req.History) {
		if t.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}

	var final []anthropic.ContentBlockParamUnion
	if len(req.Image) > 0 {
		final = append(final, anthropic.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(req.Image)))
	}
	final = append(final, anthropic.NewTextBlock(req.Instruction))

	// The screenshot turn must not follow another user turn.
	if n := len(messages); n > 0 && messages[n-1].Role == anthropic.MessageParamRoleUser {
		messages[n-1].Content = append(messages[n-1].Content, final...)
	} else {
		messages = append(messages, anthropic.NewUserMessage(final...))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: m.maxTokens,
		Messages:  messages,
	}
	if sys := strings.TrimSpace(req.System); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}
	return params
}
