package agent

import (
	"sync"

	"github.com/google/uuid"
)

// TaskState tracks a task through the engine.
type TaskState string

const (
	TaskQueued    TaskState = "queued"
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
	TaskCancelled TaskState = "cancelled"
)

// Task is one decomposed unit of work: a description and ordered steps.
type Task struct {
	ID          string
	Description string
	Steps       []string
	CurrentStep int
	Completed   bool
	State       TaskState
}

func NewTask(description string, steps []string) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		Steps:       append([]string(nil), steps...),
		State:       TaskQueued,
	}
}

// Queue is a FIFO of tasks. Clear may be called from the cancel hotkey
// while the engine is popping, hence the mutex.
type Queue struct {
	mu    sync.Mutex
	tasks []*Task
}

func (q *Queue) Push(tasks ...*Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, tasks...)
	q.mu.Unlock()
}

// Pop removes and returns the oldest task, or nil when empty.
func (q *Queue) Pop() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return t
}

func (q *Queue) Clear() {
	q.mu.Lock()
	q.tasks = nil
	q.mu.Unlock()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
