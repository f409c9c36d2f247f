package agent

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSystemPrompt is used when the prompts directory has no .md files.
const DefaultSystemPrompt = `You are an AI assistant capable of analyzing screenshots and executing computer commands. Provide step-by-step instructions for each action. If you need clarification, ask a question. For complex tasks, break them down into subtasks.

Write one action per line using these forms:
- click at (X, Y) / double click at (X, Y) / right click at (X, Y)
- type "text"
- press KEY
- hotkey KEY+KEY
- open APPLICATION
- wait for N seconds
- scroll up N / scroll down N
- drag from (X1, Y1) to (X2, Y2)

Start each independent part with "Subtask: <description>". If you cannot proceed, write "Clarification needed: <question>".`

type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// Known files come first in this order, the rest alphabetically.
var promptOrder = map[string]int{
	"identity.md":     1,
	"capabilities.md": 2,
	"grammar.md":      3,
	"user.md":         4,
}

// SystemPrompt joins the .md files of the prompts directory. A missing or
// empty directory yields DefaultSystemPrompt.
func (pm *PromptManager) SystemPrompt() (string, error) {
	entries, err := os.ReadDir(pm.Directory)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSystemPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompts directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		oi, okI := promptOrder[entries[i].Name()]
		oj, okJ := promptOrder[entries[j].Name()]
		switch {
		case okI && okJ:
			return oi < oj
		case okI:
			return true
		case okJ:
			return false
		}
		return entries[i].Name() < entries[j].Name()
	})

	var contents []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(pm.Directory, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			contents = append(contents, text)
		}
	}

	if len(contents) == 0 {
		return DefaultSystemPrompt, nil
	}
	return strings.Join(contents, "\n\n---\n\n"), nil
}
