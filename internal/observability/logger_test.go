package observability

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvents(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, sc.Err())
	return events
}

func TestLoggerWritesEvents(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir)

	l.LogStep("alice", "task-1", "click at (1, 2)", "click")
	l.LogActionError("alice", "task-1", "press enter", errors.New("boom"))
	l.LogLLM("alice", "Command: open notepad", "open notepad")
	l.Sync()

	events := readEvents(t, filepath.Join(dir, "events.jsonl"))
	require.Len(t, events, 3)
	assert.Equal(t, "step", events[0]["type"])
	assert.Equal(t, "alice", events[0]["user"])
	assert.Equal(t, "task-1", events[0]["task_id"])
	assert.Contains(t, events[0], "timestamp")
	assert.Equal(t, map[string]any{"step": "press enter", "error": "boom"}, events[1]["data"])

	llm := readEvents(t, filepath.Join(dir, "llm.jsonl"))
	require.Len(t, llm, 1)
	assert.Equal(t, "llm", llm[0]["type"])
}

func TestRotatingFileRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	r := &rotatingFile{path: path, maxSize: 4}

	_, err := r.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = r.Write([]byte("second\n"))
	require.NoError(t, err)

	old, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(old))

	cur, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(cur))
}

func TestSetStatus(t *testing.T) {
	SetStatus(RoleExecuting, "Open notepad")
	st := Snapshot()
	assert.Equal(t, RoleExecuting, st.Role)
	assert.Equal(t, "Open notepad", st.Task)

	SetStatus(RoleExecuting, "Type greeting")
	assert.Equal(t, st.Since, Snapshot().Since)

	SetStatus(RoleIdle, "")
	assert.Equal(t, RoleIdle, Snapshot().Role)
}
