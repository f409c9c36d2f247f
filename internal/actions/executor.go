package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rahul/dictum/internal/automation"
)

const (
	// DragDuration is how long a drag takes from press to release.
	DragDuration = time.Second
	// MaxWait caps a single wait step.
	MaxWait = time.Hour
)

// Outcome describes what happened to one step.
type Outcome struct {
	Action Action
	// Err is a *ParseError, ErrUnrecognized, or the driver failure. It is
	// informational: a failed step never stops the steps after it.
	Err error
}

// Executed reports whether the step produced a side effect.
func (o Outcome) Executed() bool { return o.Err == nil }

// Executor runs parsed steps against a Driver.
type Executor struct {
	Driver automation.Driver
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor(driver automation.Driver) *Executor {
	return &Executor{Driver: driver, Sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute parses step and performs it. Parse failures and driver errors
// (including panics) are logged and returned in the Outcome.
func (e *Executor) Execute(ctx context.Context, step string) (out Outcome) {
	a, err := Parse(step)
	out.Action = a
	if err != nil {
		switch {
		case errors.Is(err, ErrUnrecognized):
			log.Printf("Unknown action: %s", step)
		default:
			log.Printf("%v", err)
		}
		out.Err = err
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
			log.Printf("Error executing action '%s': %v", step, out.Err)
		}
	}()

	if err := e.dispatch(ctx, a); err != nil {
		log.Printf("Error executing action '%s': %v", step, err)
		out.Err = err
	}
	return out
}

func (e *Executor) dispatch(ctx context.Context, a Action) error {
	d := e.Driver
	switch a.Kind {
	case KindClick:
		if err := d.Click(ctx, a.X, a.Y); err != nil {
			return err
		}
		log.Printf("Clicked at (%d, %d)", a.X, a.Y)
	case KindDoubleClick:
		if err := d.DoubleClick(ctx, a.X, a.Y); err != nil {
			return err
		}
		log.Printf("Double clicked at (%d, %d)", a.X, a.Y)
	case KindRightClick:
		if err := d.RightClick(ctx, a.X, a.Y); err != nil {
			return err
		}
		log.Printf("Right clicked at (%d, %d)", a.X, a.Y)
	case KindType:
		if err := d.TypeText(ctx, a.Text); err != nil {
			return err
		}
		log.Printf("Typed: %s", a.Text)
	case KindPress:
		if err := d.PressKey(ctx, a.Key); err != nil {
			return err
		}
		log.Printf("Pressed key: %s", a.Key)
	case KindHotkey:
		if err := d.Hotkey(ctx, a.Keys...); err != nil {
			return err
		}
		log.Printf("Pressed hotkey: %v", a.Keys)
	case KindOpen:
		if err := d.Launch(ctx, a.App); err != nil {
			return err
		}
		log.Printf("Opened application: %s", a.App)
	case KindWait:
		d := MaxWait
		if a.Seconds < int(MaxWait/time.Second) {
			d = time.Duration(a.Seconds) * time.Second
		}
		if err := e.Sleep(ctx, d); err != nil {
			return err
		}
		log.Printf("Waited for %v", d)
	case KindScroll:
		if err := d.Scroll(ctx, a.Amount); err != nil {
			return err
		}
		log.Printf("Scrolled by %d", a.Amount)
	case KindDrag:
		if err := d.Drag(ctx, a.X, a.Y, a.X2, a.Y2, DragDuration); err != nil {
			return err
		}
		log.Printf("Dragged from (%d, %d) to (%d, %d)", a.X, a.Y, a.X2, a.Y2)
	default:
		return ErrUnrecognized
	}
	return nil
}
