// Package hotkey binds the global cancel shortcut. Terminals deliver the
// supported combinations as signals, so binding one means handling its
// signal.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// ErrUnsupported is returned for combinations with no signal equivalent.
var ErrUnsupported = errors.New("unsupported hotkey")

var combos = map[string]os.Signal{
	"ctrl+c":  syscall.SIGINT,
	"ctrl+\\": syscall.SIGQUIT,
}

// SignalFor maps a combination such as "Ctrl + C" to its signal.
func SignalFor(combo string) (os.Signal, error) {
	key := strings.ToLower(strings.ReplaceAll(combo, " ", ""))
	key = strings.ReplaceAll(key, "control+", "ctrl+")
	sig, ok := combos[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, combo)
	}
	return sig, nil
}

// Bind calls fn each time combo is pressed until ctx is done. It returns
// once the handler is installed.
func Bind(ctx context.Context, combo string, fn func()) error {
	sig, err := SignalFor(combo)
	if err != nil {
		return err
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				fn()
			}
		}
	}()
	return nil
}
