package agent

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rahul/dictum/internal/actions"
	"github.com/rahul/dictum/internal/observability"
	"github.com/rahul/dictum/internal/store"
	"github.com/rahul/dictum/internal/voice"
)

// StepExecutor performs one step.
type StepExecutor interface {
	Execute(ctx context.Context, step string) actions.Outcome
}

// Listener blocks until the user says something.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// FeedbackSink stores feedback records durably.
type FeedbackSink interface {
	Append(rec store.FeedbackRecord) error
}

// StepJournal records step outcomes.
type StepJournal interface {
	RecordStep(username string, rec store.StepRecord) error
}

// Engine drains the task queue one step at a time.
type Engine struct {
	Session  *Session
	Queue    *Queue
	Executor StepExecutor
	Speaker  voice.Speaker
	Listener Listener
	Feedback FeedbackSink
	Journal  StepJournal
	Logger   *observability.Logger
}

// Enqueue appends tasks in order.
func (e *Engine) Enqueue(tasks ...*Task) {
	e.Queue.Push(tasks...)
}

// Cancel stops execution at the next step boundary and drops every queued
// task. It reports whether a task was running.
func (e *Engine) Cancel() bool {
	running := e.Session.Current() != nil
	e.Session.StopListening()
	e.Queue.Clear()
	return running
}

// Interrupt handles the cancel hotkey. While the session waits for the
// next command it does nothing and returns true so the caller can exit;
// otherwise it cancels the work in progress, including tasks that are
// still being planned.
func (e *Engine) Interrupt() (idle bool) {
	if e.Session.Idle() {
		return true
	}
	e.Cancel()
	return false
}

// Run executes queued tasks in FIFO order until the queue is empty or the
// session stops listening. Step failures never stop the run; only context
// cancellation and persistence failures are returned.
func (e *Engine) Run(ctx context.Context) error {
	if e.Logger == nil {
		e.Logger = observability.NewNopLogger()
	}
	defer e.Session.setCurrent(nil)
	defer observability.SetStatus(observability.RoleIdle, "")

	for {
		task := e.Queue.Pop()
		if task == nil {
			return nil
		}

		e.Session.setCurrent(task)
		task.State = TaskRunning
		observability.SetStatus(observability.RoleExecuting, task.Description)
		e.Logger.LogTask(e.Session.Username, task.ID, task.Description, string(task.State))
		e.say(ctx, fmt.Sprintf("Starting task: %s", task.Description))

		for _, step := range task.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !e.Session.Listening() {
				e.Queue.Clear()
				task.State = TaskCancelled
				e.Logger.LogTask(e.Session.Username, task.ID, task.Description, string(task.State))
				e.say(ctx, "Task cancelled.")
				return nil
			}

			e.Session.Record(step)
			e.execute(ctx, task, step)
			task.CurrentStep++
		}

		task.Completed = true
		task.State = TaskCompleted
		e.Logger.LogTask(e.Session.Username, task.ID, task.Description, string(task.State))
		e.say(ctx, fmt.Sprintf("Task completed: %s", task.Description))

		if err := e.collectFeedback(ctx, task); err != nil {
			return err
		}
	}
}

func (e *Engine) execute(ctx context.Context, task *Task, step string) {
	out := e.Executor.Execute(ctx, step)
	user := e.Session.Username

	rec := store.StepRecord{TaskID: task.ID, Step: step, Kind: string(out.Action.Kind)}
	switch {
	case out.Err == nil:
		e.Logger.LogStep(user, task.ID, step, string(out.Action.Kind))
	case errors.Is(out.Err, actions.ErrUnparsable), errors.Is(out.Err, actions.ErrUnrecognized):
		rec.Error = out.Err.Error()
		e.Logger.LogParseFailure(user, task.ID, step, out.Err.Error())
	default:
		rec.Error = out.Err.Error()
		e.Logger.LogActionError(user, task.ID, step, out.Err)
	}

	if e.Journal != nil {
		if err := e.Journal.RecordStep(user, rec); err != nil {
			log.Printf("Warning: failed to journal step %q: %v", step, err)
		}
	}
}

func (e *Engine) collectFeedback(ctx context.Context, task *Task) error {
	observability.SetStatus(observability.RoleListening, task.Description)
	e.say(ctx, "How did I do? Please provide any feedback.")

	feedback, err := e.Listener.Listen(ctx)
	if err != nil {
		return err
	}

	rec := store.FeedbackRecord{Task: task.Description, Feedback: feedback}
	if err := e.Feedback.Append(rec); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	log.Printf("Feedback received: %s", feedback)
	e.Logger.LogFeedback(e.Session.Username, task.Description, feedback)
	e.say(ctx, "Thank you for your feedback.")
	return nil
}

func (e *Engine) say(ctx context.Context, text string) {
	if err := e.Speaker.Speak(ctx, text); err != nil {
		log.Printf("Warning: text-to-speech failed: %v", err)
	}
}
