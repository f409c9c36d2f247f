package agent

import (
	"sync"
	"sync/atomic"

	"github.com/rahul/dictum/internal/vision"
)

// DefaultConversationTurns bounds the history sent to the model.
const DefaultConversationTurns = 20

// Session is the state of one user's interaction: the listening gate that
// cancellation clears, the task being executed, the macro recording buffer
// and the conversation with the model.
type Session struct {
	Username string
	Memory   *Memory

	listening atomic.Bool
	idle      atomic.Bool

	mu           sync.Mutex
	current      *Task
	recording    bool
	recordBuf    []string
	conversation []vision.Turn
	maxTurns     int
}

func NewSession(username string, memory *Memory) *Session {
	s := &Session{Username: username, Memory: memory, maxTurns: DefaultConversationTurns}
	s.listening.Store(true)
	return s
}

// Listening reports whether execution may continue.
func (s *Session) Listening() bool { return s.listening.Load() }

// Resume reopens the gate before a new command is processed.
func (s *Session) Resume() { s.listening.Store(true) }

// StopListening closes the gate; the engine observes it at the next step.
func (s *Session) StopListening() { s.listening.Store(false) }

// SetIdle marks whether the session is waiting for the next command.
func (s *Session) SetIdle(idle bool) { s.idle.Store(idle) }

func (s *Session) Idle() bool { return s.idle.Load() }

func (s *Session) setCurrent(t *Task) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
}

// Current returns the task being executed, if any.
func (s *Session) Current() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// StartRecording begins a new macro recording whose first buffered line is
// the command that started it.
func (s *Session) StartRecording(command string) {
	s.mu.Lock()
	s.recording = true
	s.recordBuf = []string{command}
	s.mu.Unlock()
}

func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Record appends step to the buffer when a recording is in progress.
func (s *Session) Record(step string) {
	s.mu.Lock()
	if s.recording {
		s.recordBuf = append(s.recordBuf, step)
	}
	s.mu.Unlock()
}

// StopRecording ends the recording and returns the buffered lines.
func (s *Session) StopRecording() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return nil, false
	}
	buf := s.recordBuf
	s.recording = false
	s.recordBuf = nil
	return buf, true
}

// AddTurn appends a conversation turn, keeping the most recent ones.
func (s *Session) AddTurn(role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = append(s.conversation, vision.Turn{Role: role, Text: text})
	if s.maxTurns > 0 && len(s.conversation) > s.maxTurns {
		s.conversation = append([]vision.Turn(nil), s.conversation[len(s.conversation)-s.maxTurns:]...)
	}
}

// Conversation returns a copy of the conversation so far.
func (s *Session) Conversation() []vision.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]vision.Turn(nil), s.conversation...)
}
