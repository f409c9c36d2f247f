package agent

import (
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// Memory is a bounded FIFO of keyword summaries of recent commands.
type Memory struct {
	mu       sync.Mutex
	items    []string
	capacity int
	// Extract reduces a command to its keywords.
	Extract func(text string) string
}

func NewMemory(capacity int) *Memory {
	return &Memory{capacity: capacity, Extract: ExtractKeywords}
}

// Remember stores the keywords of text, evicting the oldest entry when
// full, and returns what was stored.
func (m *Memory) Remember(text string) string {
	summary := m.Extract(text)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, summary)
	m.trim()
	return summary
}

// Items returns the summaries oldest first.
func (m *Memory) Items() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.items...)
}

// Resize changes the capacity, dropping the oldest entries if needed.
func (m *Memory) Resize(capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capacity = capacity
	m.trim()
}

func (m *Memory) trim() {
	if m.capacity <= 0 {
		m.items = nil
		return
	}
	if over := len(m.items) - m.capacity; over > 0 {
		m.items = append([]string(nil), m.items[over:]...)
	}
}

// ExtractKeywords keeps the nouns, verbs and adjectives of text. If
// tagging fails the text is returned unchanged.
func ExtractKeywords(text string) string {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return text
	}

	var words []string
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "VB") || tok.Tag == "JJ" {
			words = append(words, tok.Text)
		}
	}
	return strings.Join(words, " ")
}
