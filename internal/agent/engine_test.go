package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/dictum/internal/store"
)

type engineFixture struct {
	engine   *Engine
	exec     *fakeExecutor
	speaker  *fakeSpeaker
	listener *scriptedListener
	feedback *fakeFeedback
	journal  *fakeJournal
}

func newEngineFixture(replies ...string) *engineFixture {
	f := &engineFixture{
		exec:     &fakeExecutor{errs: map[string]error{}},
		speaker:  &fakeSpeaker{},
		listener: &scriptedListener{replies: replies},
		feedback: &fakeFeedback{},
		journal:  &fakeJournal{},
	}
	f.engine = &Engine{
		Session:  NewSession("alice", NewMemory(10)),
		Queue:    &Queue{},
		Executor: f.exec,
		Speaker:  f.speaker,
		Listener: f.listener,
		Feedback: f.feedback,
		Journal:  f.journal,
	}
	return f
}

func fiveSteps() []string {
	var steps []string
	for i := 1; i <= 5; i++ {
		steps = append(steps, fmt.Sprintf("click at (%d, %d)", i, i))
	}
	return steps
}

func TestEngineRunsTasksInOrder(t *testing.T) {
	f := newEngineFixture("great", "fine")
	first := NewTask("First", []string{"press enter"})
	second := NewTask("Second", []string{`type "a"`, `type "b"`})
	f.engine.Enqueue(first, second)

	require.NoError(t, f.engine.Run(context.Background()))

	assert.Equal(t, []string{"press enter", `type "a"`, `type "b"`}, f.exec.steps)
	assert.Equal(t, []string{
		"Starting task: First",
		"Task completed: First",
		"How did I do? Please provide any feedback.",
		"Thank you for your feedback.",
		"Starting task: Second",
		"Task completed: Second",
		"How did I do? Please provide any feedback.",
		"Thank you for your feedback.",
	}, f.speaker.lines)
	assert.Equal(t, []store.FeedbackRecord{
		{Task: "First", Feedback: "great"},
		{Task: "Second", Feedback: "fine"},
	}, f.feedback.records)

	assert.True(t, first.Completed)
	assert.Equal(t, TaskCompleted, second.State)
	assert.Equal(t, 2, second.CurrentStep)
	assert.Nil(t, f.engine.Session.Current())
	assert.Len(t, f.journal.records, 3)
}

func TestEngineCancelStopsAtNextStep(t *testing.T) {
	f := newEngineFixture()
	task := NewTask("Long", fiveSteps())
	next := NewTask("Next", []string{"press enter"})
	f.engine.Enqueue(task, next)

	var cancelled bool
	f.exec.onStep = func(step string) {
		if step == "click at (2, 2)" {
			cancelled = f.engine.Cancel()
		}
	}

	require.NoError(t, f.engine.Run(context.Background()))

	assert.True(t, cancelled)
	assert.Equal(t, fiveSteps()[:2], f.exec.steps)
	assert.Equal(t, 2, task.CurrentStep)
	assert.False(t, task.Completed)
	assert.Equal(t, TaskCancelled, task.State)
	assert.Equal(t, TaskQueued, next.State)
	assert.Zero(t, f.engine.Queue.Len())
	assert.Equal(t, "Task cancelled.", f.speaker.Last())
	assert.Empty(t, f.feedback.records)
}

func TestEngineCancelWhenIdle(t *testing.T) {
	f := newEngineFixture()
	f.engine.Enqueue(NewTask("Queued", nil))

	assert.False(t, f.engine.Cancel())
	assert.False(t, f.engine.Session.Listening())
	assert.Zero(t, f.engine.Queue.Len())
}

func TestEngineIsolatesStepFailures(t *testing.T) {
	f := newEngineFixture("ok")
	steps := fiveSteps()
	f.exec.errs[steps[2]] = errors.New("xdotool: exit status 1")
	task := NewTask("Clicks", steps)
	f.engine.Enqueue(task)

	require.NoError(t, f.engine.Run(context.Background()))

	assert.Equal(t, steps, f.exec.steps)
	assert.True(t, task.Completed)
	assert.Equal(t, 5, task.CurrentStep)
	require.Len(t, f.journal.records, 5)
	assert.Equal(t, "xdotool: exit status 1", f.journal.records[2].Error)
	assert.Empty(t, f.journal.records[3].Error)
	assert.Equal(t, "click", f.journal.records[0].Kind)
}

func TestEngineRecordsStepsWhileRecording(t *testing.T) {
	f := newEngineFixture("ok")
	f.engine.Session.StartRecording("start recording action greet Say hello")
	f.engine.Enqueue(NewTask("Greet", []string{`type "hello"`, "press enter"}))

	require.NoError(t, f.engine.Run(context.Background()))

	lines, ok := f.engine.Session.StopRecording()
	require.True(t, ok)
	assert.Equal(t, []string{"start recording action greet Say hello", `type "hello"`, "press enter"}, lines)
}

func TestEngineReturnsFeedbackPersistenceError(t *testing.T) {
	f := newEngineFixture("ok")
	f.feedback.err = fmt.Errorf("%w: disk full", store.ErrPersistence)
	f.engine.Enqueue(NewTask("Task", []string{"press enter"}))

	err := f.engine.Run(context.Background())
	assert.ErrorIs(t, err, store.ErrPersistence)
}

func TestEngineHonorsContext(t *testing.T) {
	f := newEngineFixture()
	f.engine.Enqueue(NewTask("Task", []string{"press enter"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.engine.Run(ctx), context.Canceled)
	assert.Empty(t, f.exec.steps)
}
