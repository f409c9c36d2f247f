package observability

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeCommand      EventType = "command"
	EventTypeTask         EventType = "task"
	EventTypeStep         EventType = "step"
	EventTypeParseFailure EventType = "parse_failure"
	EventTypeActionError  EventType = "action_error"
	EventTypeFeedback     EventType = "feedback"
	EventTypeHeartbeat    EventType = "heartbeat"
	EventTypeLLM          EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	User      string    `json:"user,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	events *zap.Logger
	llm    *zap.Logger
}

// NewLogger writes events to logs/events.jsonl and LLM exchanges to
// logs/llm.jsonl (rotated at 10MB).
func NewLogger(dir string) *Logger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return NewNopLogger()
	}
	return &Logger{
		events: newJSONLogger(&rotatingFile{path: filepath.Join(dir, "events.jsonl"), maxSize: 10 * 1024 * 1024}),
		llm:    newJSONLogger(&rotatingFile{path: filepath.Join(dir, "llm.jsonl"), maxSize: 10 * 1024 * 1024}),
	}
}

// NewNopLogger discards every event.
func NewNopLogger() *Logger {
	return &Logger{events: zap.NewNop(), llm: zap.NewNop()}
}

func newJSONLogger(w zapcore.WriteSyncer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.MessageKey = "type"
	enc.LevelKey = ""
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, zap.DebugLevel))
}

// Log emits a structured JSON event.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	fields := []zap.Field{zap.Time("timestamp", evt.Timestamp), zap.Any("data", evt.Data)}
	if evt.User != "" {
		fields = append(fields, zap.String("user", evt.User))
	}
	if evt.TaskID != "" {
		fields = append(fields, zap.String("task_id", evt.TaskID))
	}

	l.events.Info(string(evt.Type), fields...)
	if evt.Type == EventTypeLLM {
		l.llm.Info(string(evt.Type), fields...)
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.events.Sync()
	_ = l.llm.Sync()
}

// Helper methods for common events

func (l *Logger) LogCommand(user, utterance, kind string) {
	l.Log(Event{
		Type: EventTypeCommand,
		User: user,
		Data: map[string]string{"utterance": utterance, "kind": kind},
	})
}

func (l *Logger) LogTask(user, taskID, description, state string) {
	l.Log(Event{
		Type:   EventTypeTask,
		User:   user,
		TaskID: taskID,
		Data:   map[string]string{"description": description, "state": state},
	})
}

func (l *Logger) LogStep(user, taskID, step, kind string) {
	l.Log(Event{
		Type:   EventTypeStep,
		User:   user,
		TaskID: taskID,
		Data:   map[string]string{"step": step, "kind": kind},
	})
}

func (l *Logger) LogParseFailure(user, taskID, step, reason string) {
	l.Log(Event{
		Type:   EventTypeParseFailure,
		User:   user,
		TaskID: taskID,
		Data:   map[string]string{"step": step, "reason": reason},
	})
}

func (l *Logger) LogActionError(user, taskID, step string, err error) {
	l.Log(Event{
		Type:   EventTypeActionError,
		User:   user,
		TaskID: taskID,
		Data:   map[string]string{"step": step, "error": err.Error()},
	})
}

func (l *Logger) LogFeedback(user, task, feedback string) {
	l.Log(Event{
		Type: EventTypeFeedback,
		User: user,
		Data: map[string]string{"task": task, "feedback": feedback},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(user string, prompt any, response string) {
	l.Log(Event{
		Type: EventTypeLLM,
		User: user,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}

// rotatingFile appends to path and keeps a single .old file once the
// current one grows past maxSize.
type rotatingFile struct {
	mu      sync.Mutex
	path    string
	maxSize int64
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, err := os.Stat(r.path); err == nil && info.Size() > r.maxSize {
		r.rotate()
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

func (r *rotatingFile) Sync() error { return nil }

func (r *rotatingFile) rotate() {
	oldPath := r.path + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(r.path, oldPath)
}
