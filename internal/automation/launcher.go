package automation

import (
	"errors"
	"fmt"
	"strings"
)

// LaunchCommand returns the native launcher invocation for app on goos.
func LaunchCommand(goos, app string) (string, []string) {
	switch goos {
	case "windows":
		return "cmd", []string{"/c", "start", "", app}
	case "darwin":
		return "open", []string{"-a", app}
	default:
		return "xdg-open", []string{app}
	}
}

// Launch starts app with the platform launcher and returns without waiting.
func Launch(start Starter, goos, app string) error {
	app = strings.TrimSpace(app)
	if app == "" {
		return errors.New("application name is required")
	}
	name, args := LaunchCommand(goos, app)
	if err := start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", app, err)
	}
	return nil
}
