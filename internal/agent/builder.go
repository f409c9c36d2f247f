package agent

import (
	"context"
	"log"
	"strings"
)

const (
	subtaskMarker       = "subtask:"
	clarificationMarker = "clarification needed:"

	// MaxClarificationDepth bounds nested clarification round-trips.
	MaxClarificationDepth = 3
)

// Clarifier asks the user a question and returns the instruction text
// produced by processing their answer.
type Clarifier interface {
	Clarify(ctx context.Context, question string) (string, error)
}

// Builder splits a model response into tasks.
type Builder struct {
	Clarifier Clarifier
	MaxDepth  int
}

type pendingLines struct {
	lines []string
	depth int
}

// Build segments text into tasks. Non-empty lines accumulate; a "Subtask:"
// line closes the current accumulation and seeds the next one with its own
// text; a "Clarification needed:" line is answered through the Clarifier
// and the answer's lines are processed in its place. The first line of
// each accumulation becomes the description, the rest its steps.
func (b *Builder) Build(ctx context.Context, text string) ([]*Task, error) {
	maxDepth := b.MaxDepth
	if maxDepth <= 0 {
		maxDepth = MaxClarificationDepth
	}

	var (
		tasks []*Task
		acc   []string
	)
	flush := func() {
		if len(acc) > 0 {
			tasks = append(tasks, NewTask(acc[0], acc[1:]))
			acc = nil
		}
	}

	stack := []pendingLines{{lines: strings.Split(text, "\n")}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.lines) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		line := strings.TrimSpace(top.lines[0])
		top.lines = top.lines[1:]
		depth := top.depth
		if line == "" {
			continue
		}

		if seed, ok := cutMarker(line, subtaskMarker); ok {
			flush()
			if seed != "" {
				acc = append(acc, seed)
			}
			continue
		}
		if question, ok := cutMarker(line, clarificationMarker); ok {
			if b.Clarifier == nil || depth >= maxDepth {
				log.Printf("Skipping clarification at depth %d: %s", depth, question)
				continue
			}
			reply, err := b.Clarifier.Clarify(ctx, question)
			if err != nil {
				return nil, err
			}
			stack = append(stack, pendingLines{lines: strings.Split(reply, "\n"), depth: depth + 1})
			continue
		}
		acc = append(acc, line)
	}
	flush()

	return tasks, nil
}

// cutMarker strips an ASCII marker from the start of line, ignoring case,
// and returns the trimmed remainder.
func cutMarker(line, marker string) (string, bool) {
	if len(line) < len(marker) || !strings.EqualFold(line[:len(marker)], marker) {
		return "", false
	}
	return strings.TrimSpace(line[len(marker):]), true
}
