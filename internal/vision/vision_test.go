package vision

import (
	"context"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestMergeTurns(t *testing.T) {
	got := mergeTurns([]Turn{
		{Role: RoleUser, Text: "open the editor"},
		{Role: RoleUser, Text: "the text one"},
		{Role: RoleAssistant, Text: "  "},
		{Role: RoleAssistant, Text: "open gedit"},
		{Role: "system", Text: "odd role"},
	})
	assert.Equal(t, []Turn{
		{Role: RoleUser, Text: "open the editor\n\nthe text one"},
		{Role: RoleAssistant, Text: "open gedit"},
		{Role: RoleUser, Text: "odd role"},
	}, got)
}

func TestAnthropicParamsAlternateRoles(t *testing.T) {
	m, err := NewAnthropicModel("key", "")
	require.NoError(t, err)

	params := m.buildParams(Request{
		System: "be helpful",
		History: []Turn{
			{Role: RoleUser, Text: "hi"},
			{Role: RoleAssistant, Text: "hello"},
			{Role: RoleUser, Text: "clarified"},
		},
		Image:       []byte{0x89, 'P', 'N', 'G'},
		Instruction: "Command: open editor",
	})

	require.Len(t, params.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, params.Messages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[2].Role)

	last := params.Messages[2].Content
	require.Len(t, last, 3)
	assert.NotNil(t, last[0].OfText)
	assert.NotNil(t, last[1].OfImage)
	assert.NotNil(t, last[2].OfText)

	require.Len(t, params.System, 1)
	assert.Equal(t, "be helpful", params.System[0].Text)
	assert.Equal(t, anthropic.Model(defaultAnthropicModel), params.Model)
}

func TestNewAnthropicModelRequiresKey(t *testing.T) {
	_, err := NewAnthropicModel(" ", "x")
	assert.Error(t, err)
}

type fakeLLM struct {
	got      []llms.MessageContent
	response string
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.got = messages
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.response}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChainModelSendsImageAndHistory(t *testing.T) {
	llm := &fakeLLM{response: "click at (1, 2)"}
	m := &LangChainModel{LLM: llm, MaxTokens: 100}

	out, err := m.Complete(context.Background(), Request{
		System:      "sys",
		History:     []Turn{{Role: RoleUser, Text: "q"}, {Role: RoleAssistant, Text: "a"}},
		Image:       []byte("png"),
		Instruction: "do it",
	})
	require.NoError(t, err)
	assert.Equal(t, "click at (1, 2)", out)

	require.Len(t, llm.got, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, llm.got[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, llm.got[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, llm.got[2].Role)

	final := llm.got[3]
	assert.Equal(t, llms.ChatMessageTypeHuman, final.Role)
	require.Len(t, final.Parts, 2)
	img, ok := final.Parts[0].(llms.BinaryContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, llms.TextContent{Text: "do it"}, final.Parts[1])
}
