package observability

import (
	"sync"
	"time"
)

// Role is what the assistant is doing right now.
type Role string

const (
	RoleIdle      Role = "IDLE"
	RoleListening Role = "LISTENING"
	RolePlanning  Role = "PLANNING"
	RoleExecuting Role = "EXECUTING"
)

// Status is a snapshot of the assistant's activity.
type Status struct {
	Role          Role
	Task          string
	Since         time.Time // when Role was entered
	LastHeartbeat time.Time
}

var (
	statusMu sync.RWMutex
	status   = Status{Role: RoleIdle, Since: time.Now(), LastHeartbeat: time.Now()}
)

// SetStatus records the current role and the task it concerns. Since only
// moves when the role changes.
func SetStatus(role Role, task string) {
	statusMu.Lock()
	defer statusMu.Unlock()
	if status.Role != role {
		status.Since = time.Now()
	}
	status.Role = role
	status.Task = task
}

func Snapshot() Status {
	statusMu.RLock()
	defer statusMu.RUnlock()
	return status
}

// Heartbeat marks the process as alive.
func Heartbeat() {
	statusMu.Lock()
	status.LastHeartbeat = time.Now()
	statusMu.Unlock()
}
