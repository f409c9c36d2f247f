// Package gateway relays dictation from chat services into the assistant
// and mirrors its spoken announcements back.
package gateway

import "context"

// Messenger is a two-way chat gateway.
type Messenger interface {
	// Start receives messages until ctx is done or Stop is called.
	Start(ctx context.Context) error
	// Send delivers text to a chat.
	Send(chatID int64, text string) error
	Stop() error
}

// Inbox receives relayed utterances.
type Inbox interface {
	Push(text string)
}
