// Package actions turns single instruction lines into desktop actions and
// runs them against an automation driver.
package actions

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies a recognized action.
type Kind string

const (
	KindClick       Kind = "click"
	KindDoubleClick Kind = "double_click"
	KindRightClick  Kind = "right_click"
	KindType        Kind = "type"
	KindPress       Kind = "press"
	KindHotkey      Kind = "hotkey"
	KindOpen        Kind = "open"
	KindWait        Kind = "wait"
	KindScroll      Kind = "scroll"
	KindDrag        Kind = "drag"
	KindUnknown     Kind = "unknown"
)

var (
	// ErrUnrecognized is returned when no trigger keyword matches a step.
	ErrUnrecognized = errors.New("unrecognized action")
	// ErrUnparsable is wrapped by ParseError when a trigger matched but its
	// arguments did not.
	ErrUnparsable = errors.New("unparsable action arguments")
)

// ParseError reports a step whose trigger matched but whose arguments did not.
type ParseError struct {
	Kind Kind
	Step string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("couldn't parse %s action: %q", e.Kind, e.Step)
}

func (e *ParseError) Unwrap() error { return ErrUnparsable }

// Action is the parsed form of one step.
type Action struct {
	Kind Kind
	Step string

	X, Y   int
	X2, Y2 int

	Text    string
	Key     string
	Keys    []string
	App     string
	Seconds int
	// Amount is positive for up and negative for down.
	Amount int
}

type trigger struct {
	keyword string
	kind    Kind
	parse   func(step, lower string) (Action, bool)
}

// triggers are checked in order; earlier keywords win when one is a
// substring of another ("double click" contains "click").
var triggers = []trigger{
	{"double click", KindDoubleClick, coordinates(`double click`)},
	{"right click", KindRightClick, coordinates(`right click`)},
	{"click", KindClick, coordinates(`click`)},
	{"type", KindType, parseType},
	{"press", KindPress, parsePress},
	{"hotkey", KindHotkey, parseHotkey},
	{"open", KindOpen, parseOpen},
	{"wait", KindWait, parseWait},
	{"scroll", KindScroll, parseScroll},
	{"drag", KindDrag, parseDrag},
}

var (
	typeRe   = regexp.MustCompile(`(?i)type "?(.*?)"?$`)
	waitRe   = regexp.MustCompile(`wait for (\d+) seconds?`)
	scrollRe = regexp.MustCompile(`scroll (up|down) (\d+)`)
	dragRe   = regexp.MustCompile(`drag from \(?(\d+),?\s*(\d+)\)? to \(?(\d+),?\s*(\d+)\)?`)
)

// Parse classifies step and extracts its arguments. A step matching no
// trigger yields KindUnknown and ErrUnrecognized; a step whose arguments
// do not fit its kind yields a *ParseError.
func Parse(step string) (Action, error) {
	step = strings.TrimSpace(step)
	lower := strings.ToLower(step)

	for _, t := range triggers {
		if !strings.Contains(lower, t.keyword) {
			continue
		}
		a, ok := t.parse(step, lower)
		a.Kind = t.kind
		a.Step = step
		if !ok {
			return a, &ParseError{Kind: t.kind, Step: step}
		}
		return a, nil
	}

	return Action{Kind: KindUnknown, Step: step}, ErrUnrecognized
}

func coordinates(keyword string) func(step, lower string) (Action, bool) {
	re := regexp.MustCompile(keyword + ` (?:at |on )?\(?(\d+),?\s*(\d+)\)?`)
	return func(_, lower string) (Action, bool) {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			return Action{}, false
		}
		x, okX := atoi(m[1])
		y, okY := atoi(m[2])
		return Action{X: x, Y: y}, okX && okY
	}
}

func parseType(step, _ string) (Action, bool) {
	m := typeRe.FindStringSubmatch(step)
	if m == nil || m[1] == "" {
		return Action{}, false
	}
	return Action{Text: m[1]}, true
}

func parsePress(_, lower string) (Action, bool) {
	_, rest, _ := strings.Cut(lower, "press")
	key := strings.TrimSpace(rest)
	if key == "" {
		return Action{}, false
	}
	return Action{Key: key}, true
}

func parseHotkey(_, lower string) (Action, bool) {
	_, rest, _ := strings.Cut(lower, "hotkey")
	var keys []string
	for _, k := range strings.Split(rest, "+") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return Action{}, false
	}
	return Action{Keys: keys}, true
}

func parseOpen(step, lower string) (Action, bool) {
	// keep the original casing unless lowering changed byte offsets
	src := step
	if len(src) != len(lower) {
		src = lower
	}
	idx := strings.Index(lower, "open")
	app := strings.TrimSpace(src[idx+len("open"):])
	if app == "" {
		return Action{}, false
	}
	return Action{App: app}, true
}

func parseWait(_, lower string) (Action, bool) {
	m := waitRe.FindStringSubmatch(lower)
	if m == nil {
		return Action{}, false
	}
	n, ok := atoi(m[1])
	return Action{Seconds: n}, ok
}

func parseScroll(_, lower string) (Action, bool) {
	m := scrollRe.FindStringSubmatch(lower)
	if m == nil {
		return Action{}, false
	}
	amount, ok := atoi(m[2])
	if m[1] == "down" {
		amount = -amount
	}
	return Action{Amount: amount}, ok
}

func parseDrag(_, lower string) (Action, bool) {
	m := dragRe.FindStringSubmatch(lower)
	if m == nil {
		return Action{}, false
	}
	var coords [4]int
	for i := range coords {
		n, ok := atoi(m[i+1])
		if !ok {
			return Action{}, false
		}
		coords[i] = n
	}
	return Action{X: coords[0], Y: coords[1], X2: coords[2], Y2: coords[3]}, true
}

// atoi reports false for numbers that do not fit in an int.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
