package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FeedbackRecord is one line of the feedback log.
type FeedbackRecord struct {
	Task     string `json:"task"`
	Feedback string `json:"feedback"`
}

// FeedbackLog appends records as JSON lines. Existing lines are never
// rewritten.
type FeedbackLog struct {
	path string
}

func NewFeedbackLog(path string) *FeedbackLog {
	return &FeedbackLog{path: path}
}

// Append writes rec to the end of the log before returning.
func (l *FeedbackLog) Append(rec FeedbackRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode feedback: %v", ErrPersistence, err)
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open feedback log: %v", ErrPersistence, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: write feedback log: %v", ErrPersistence, err)
	}
	return nil
}
