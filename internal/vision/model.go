// Package vision talks to multimodal language models: a system prompt, the
// running conversation, one screenshot and an instruction go in, a single
// text completion comes out.
package vision

import (
	"context"
	"strings"
)

// Roles used in Turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role string
	Text string
}

// Request is everything sent to the model for one command.
type Request struct {
	System      string
	History     []Turn
	Image       []byte // PNG
	Instruction string
}

// Model returns a text completion for a request.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// mergeTurns joins consecutive turns of the same role, dropping empty ones,
// so providers that require alternating roles accept the history.
func mergeTurns(history []Turn) []Turn {
	var out []Turn
	for _, t := range history {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		role := t.Role
		if role != RoleAssistant {
			role = RoleUser
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Text += "\n\n" + text
			continue
		}
		out = append(out, Turn{Role: role, Text: text})
	}
	return out
}
