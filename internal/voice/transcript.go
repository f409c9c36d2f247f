// Package voice holds the speech side of the assistant: where recognized
// text comes from and how announcements are spoken.
package voice

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

// Transcriber exposes the most recently recognized utterance. Text returns
// "" when nothing new has been heard.
type Transcriber interface {
	Text() string
	Clear()
}

// Buffer is a Transcriber fed by Push. Any number of sources (a terminal,
// a chat gateway, a speech engine) may push into the same buffer.
type Buffer struct {
	mu   sync.Mutex
	text string
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Push replaces the pending utterance with text.
func (b *Buffer) Push(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
}

func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	b.text = ""
	b.mu.Unlock()
}

// ErrInputClosed is returned by Listen once every input source has ended
// and nothing is pending.
var ErrInputClosed = errors.New("input closed")

// Listener turns a polled Transcriber into a blocking call.
type Listener struct {
	Source   Transcriber
	Interval time.Duration
	// Closed, when set, is closed after the last utterance was pushed.
	Closed <-chan struct{}
}

func NewListener(src Transcriber) *Listener {
	return &Listener{Source: src, Interval: 100 * time.Millisecond}
}

// Listen waits for the next utterance, clears it from the source and
// returns it. It returns ctx.Err() if ctx ends first and ErrInputClosed
// if the input closes with nothing pending.
func (l *Listener) Listen(ctx context.Context) (string, error) {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		if text := l.take(); text != "" {
			return text, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-l.Closed:
			if text := l.take(); text != "" {
				return text, nil
			}
			return "", ErrInputClosed
		case <-ticker.C:
		}
	}
}

func (l *Listener) take() string {
	text := l.Source.Text()
	if text != "" {
		l.Source.Clear()
	}
	return text
}

// ReadLines pushes every line of r into b until r is exhausted or ctx
// ends. It stands in for a speech engine when dictating from a terminal.
func ReadLines(ctx context.Context, r io.Reader, b *Buffer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.Push(sc.Text())
	}
	return sc.Err()
}
