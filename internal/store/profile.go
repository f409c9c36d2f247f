// Package store persists user profiles with their saved macros, the
// feedback log, and the conversation/execution journal.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/natefinch/atomic"
)

var (
	// ErrPersistence wraps every failure to durably write user state.
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound is returned for operations on an unknown macro name.
	ErrNotFound = errors.New("action not found")
)

// Macro is a saved, replayable sequence of steps.
type Macro struct {
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// Profile holds one user's settings and saved actions. Every mutation is
// written to disk before it returns.
type Profile struct {
	Username     string
	Settings     map[string]any
	SavedActions map[string]Macro

	path string
}

type profileFile struct {
	Settings     map[string]any   `json:"settings"`
	SavedActions map[string]Macro `json:"saved_actions"`
}

// ProfilePath returns <dir>/<username>_profile.json.
func ProfilePath(dir, username string) string {
	return filepath.Join(dir, username+"_profile.json")
}

// LoadProfile reads the profile for username from dir. A missing file
// yields an empty profile.
func LoadProfile(dir, username string) (*Profile, error) {
	p := &Profile{
		Username:     username,
		Settings:     make(map[string]any),
		SavedActions: make(map[string]Macro),
		path:         ProfilePath(dir, username),
	}

	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", p.path, err)
	}

	var f profileFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", p.path, err)
	}
	if f.Settings != nil {
		p.Settings = f.Settings
	}
	if f.SavedActions != nil {
		p.SavedActions = f.SavedActions
	}
	return p, nil
}

func (p *Profile) save() error {
	data, err := json.MarshalIndent(profileFile{
		Settings:     p.Settings,
		SavedActions: p.SavedActions,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode profile: %v", ErrPersistence, err)
	}
	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	if err := atomic.WriteFile(p.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: write profile %s: %v", ErrPersistence, p.path, err)
	}
	return nil
}

// SaveAction creates or replaces the macro called name.
func (p *Profile) SaveAction(name, description string, steps []string) error {
	if steps == nil {
		steps = []string{}
	}
	p.SavedActions[name] = Macro{Description: description, Steps: append([]string(nil), steps...)}
	return p.save()
}

// GetAction returns the macro called name.
func (p *Profile) GetAction(name string) (Macro, bool) {
	m, ok := p.SavedActions[name]
	return m, ok
}

// ListActions returns the saved macro names in sorted order.
func (p *Profile) ListActions() []string {
	names := make([]string, 0, len(p.SavedActions))
	for name := range p.SavedActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteAction removes the macro called name. Unknown names return
// ErrNotFound and leave the profile untouched.
func (p *Profile) DeleteAction(name string) error {
	if _, ok := p.SavedActions[name]; !ok {
		return ErrNotFound
	}
	delete(p.SavedActions, name)
	return p.save()
}

// UpdateSettings merges settings into the profile.
func (p *Profile) UpdateSettings(settings map[string]any) error {
	for k, v := range settings {
		p.Settings[k] = v
	}
	return p.save()
}
