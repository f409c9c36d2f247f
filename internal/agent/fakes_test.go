package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rahul/dictum/internal/actions"
	"github.com/rahul/dictum/internal/store"
	"github.com/rahul/dictum/internal/vision"
)

type fakeExecutor struct {
	steps  []string
	errs   map[string]error
	onStep func(step string)
}

func (f *fakeExecutor) Execute(_ context.Context, step string) actions.Outcome {
	f.steps = append(f.steps, step)
	if f.onStep != nil {
		f.onStep(step)
	}
	a, _ := actions.Parse(step)
	return actions.Outcome{Action: a, Err: f.errs[step]}
}

type fakeSpeaker struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	f.lines = append(f.lines, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeSpeaker) Last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lines) == 0 {
		return ""
	}
	return f.lines[len(f.lines)-1]
}

var errNoReply = errors.New("no scripted reply left")

type scriptedListener struct {
	replies []string
}

func (l *scriptedListener) Listen(context.Context) (string, error) {
	if len(l.replies) == 0 {
		return "", errNoReply
	}
	r := l.replies[0]
	l.replies = l.replies[1:]
	return r, nil
}

type fakeFeedback struct {
	records []store.FeedbackRecord
	err     error
}

func (f *fakeFeedback) Append(rec store.FeedbackRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type fakeJournal struct {
	records []store.StepRecord
}

func (f *fakeJournal) RecordStep(_ string, rec store.StepRecord) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeModel struct {
	requests []vision.Request
	respond  func(command string) string
	err      error
	// during runs inside Complete, before the reply is returned.
	during func(command string)
}

func (f *fakeModel) Complete(_ context.Context, req vision.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.during != nil {
		f.during(commandOf(req.Instruction))
	}
	if f.err != nil {
		return "", f.err
	}
	return f.respond(commandOf(req.Instruction)), nil
}

// commandOf extracts the command from the first line of an instruction.
func commandOf(instruction string) string {
	first, _, _ := strings.Cut(instruction, "\n")
	return strings.TrimPrefix(first, "Command: ")
}

type fakeScreen struct {
	captures int
	err      error
}

func (f *fakeScreen) Capture(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.captures++
	return "screenshot_1.png", nil
}

type fakeClarifier struct {
	questions []string
	replies   []string
	err       error
}

func (f *fakeClarifier) Clarify(_ context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}
