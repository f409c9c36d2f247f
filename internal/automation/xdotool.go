package automation

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// XdotoolDriver drives the X11 desktop through the xdotool binary.
type XdotoolDriver struct {
	Run   Runner
	Start Starter
	GOOS  string
}

func NewXdotoolDriver() *XdotoolDriver {
	return &XdotoolDriver{Run: execRunner, Start: execStarter, GOOS: runtime.GOOS}
}

// keyNames maps spoken key names to X keysyms.
var keyNames = map[string]string{
	"enter":     "Return",
	"return":    "Return",
	"esc":       "Escape",
	"escape":    "Escape",
	"tab":       "Tab",
	"space":     "space",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Prior",
	"pagedown":  "Next",
	"win":       "super",
	"cmd":       "super",
	"command":   "super",
}

func keysym(k string) string {
	k = strings.TrimSpace(k)
	if sym, ok := keyNames[strings.ToLower(k)]; ok {
		return sym
	}
	return k
}

func (d *XdotoolDriver) xdotool(ctx context.Context, args ...string) error {
	output, err := d.Run(ctx, "xdotool", args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || strings.Contains(err.Error(), "executable file not found") {
			return fmt.Errorf("xdotool is not installed: %w", err)
		}
		return fmt.Errorf("xdotool %s: %w: %s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

func itoa(v int) string { return strconv.Itoa(v) }

func (d *XdotoolDriver) Click(ctx context.Context, x, y int) error {
	return d.xdotool(ctx, "mousemove", itoa(x), itoa(y), "click", "1")
}

func (d *XdotoolDriver) DoubleClick(ctx context.Context, x, y int) error {
	return d.xdotool(ctx, "mousemove", itoa(x), itoa(y), "click", "--repeat", "2", "1")
}

func (d *XdotoolDriver) RightClick(ctx context.Context, x, y int) error {
	return d.xdotool(ctx, "mousemove", itoa(x), itoa(y), "click", "3")
}

func (d *XdotoolDriver) TypeText(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("text is required for type")
	}
	return d.xdotool(ctx, "type", "--", text)
}

func (d *XdotoolDriver) PressKey(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required for press")
	}
	return d.xdotool(ctx, "key", keysym(key))
}

func (d *XdotoolDriver) Hotkey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return errors.New("at least one key is required for hotkey")
	}
	syms := make([]string, len(keys))
	for i, k := range keys {
		syms[i] = keysym(k)
	}
	return d.xdotool(ctx, "key", strings.Join(syms, "+"))
}

// Scroll scrolls up for positive amounts and down for negative ones, one
// wheel click per unit.
func (d *XdotoolDriver) Scroll(ctx context.Context, amount int) error {
	if amount == 0 {
		return nil
	}
	button := "4"
	if amount < 0 {
		button = "5"
		amount = -amount
	}
	return d.xdotool(ctx, "click", "--repeat", itoa(amount), button)
}

func (d *XdotoolDriver) Drag(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) error {
	secs := strconv.FormatFloat(duration.Seconds(), 'f', -1, 64)
	return d.xdotool(ctx,
		"mousemove", itoa(x1), itoa(y1),
		"mousedown", "1",
		"sleep", secs,
		"mousemove", itoa(x2), itoa(y2),
		"mouseup", "1",
	)
}

func (d *XdotoolDriver) Launch(ctx context.Context, app string) error {
	return Launch(d.Start, d.GOOS, app)
}
