package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Message is one turn of the conversation with the model.
type Message struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StepRecord is one executed (or skipped) step.
type StepRecord struct {
	TaskID string
	Step   string
	Kind   string
	Error  string
	At     time.Time
}

// HistoryStore journals conversation turns and step outcomes in sqlite.
type HistoryStore struct {
	DB *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT,
			task_id TEXT,
			step TEXT,
			kind TEXT,
			error TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

func (h *HistoryStore) AddMessage(username, role, content string) error {
	query := `INSERT INTO messages (username, role, content) VALUES (?, ?, ?)`
	_, err := h.DB.Exec(query, username, role, content)
	return err
}

// GetHistory returns the last limit turns for username, oldest first.
func (h *HistoryStore) GetHistory(username string, limit int) ([]Message, error) {
	query := `SELECT role, content FROM messages WHERE username = ? ORDER BY id DESC LIMIT ?`
	rows, err := h.DB.Query(query, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		history = append(history, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

func (h *HistoryStore) RecordStep(username string, rec StepRecord) error {
	query := `INSERT INTO steps (username, task_id, step, kind, error) VALUES (?, ?, ?, ?, ?)`
	_, err := h.DB.Exec(query, username, rec.TaskID, rec.Step, rec.Kind, rec.Error)
	return err
}

// StepOutcomes returns the journaled steps of taskID in execution order.
func (h *HistoryStore) StepOutcomes(taskID string) ([]StepRecord, error) {
	query := `SELECT task_id, step, kind, error, timestamp FROM steps WHERE task_id = ? ORDER BY id`
	rows, err := h.DB.Query(query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StepRecord
	for rows.Next() {
		var rec StepRecord
		var at any
		if err := rows.Scan(&rec.TaskID, &rec.Step, &rec.Kind, &rec.Error, &at); err != nil {
			return nil, err
		}
		rec.At = parseTimestamp(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// parseTimestamp accepts either a driver-decoded time or sqlite's
// CURRENT_TIMESTAMP text form.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts
		}
	case []byte:
		return parseTimestamp(string(t))
	}
	return time.Time{}
}
