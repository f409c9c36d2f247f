// Package automation injects mouse and keyboard input and captures the
// screen by shelling out to the platform's desktop tools.
package automation

import (
	"context"
	"os/exec"
	"time"
)

// Driver is the set of OS input primitives the action executor needs.
type Driver interface {
	Click(ctx context.Context, x, y int) error
	DoubleClick(ctx context.Context, x, y int) error
	RightClick(ctx context.Context, x, y int) error
	TypeText(ctx context.Context, text string) error
	PressKey(ctx context.Context, key string) error
	Hotkey(ctx context.Context, keys ...string) error
	Scroll(ctx context.Context, amount int) error
	Drag(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) error
	Launch(ctx context.Context, app string) error
}

// Runner executes name with args and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Starter launches name with args without waiting for it to exit.
type Starter func(name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func execStarter(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
