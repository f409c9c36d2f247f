package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
	"sync"
)

// Speaker speaks text and returns once playback has finished.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// CommandSpeaker prints every announcement and plays it through the
// platform's command-line synthesizer (say on macOS, espeak elsewhere).
type CommandSpeaker struct {
	Out  io.Writer
	Run  func(ctx context.Context, name string, args ...string) error
	GOOS string

	mu        sync.Mutex
	voice     string
	muted     bool
	warnedOff bool
}

func NewCommandSpeaker(out io.Writer, voiceName string) *CommandSpeaker {
	return &CommandSpeaker{
		Out:   out,
		Run:   runCommand,
		GOOS:  runtime.GOOS,
		voice: voiceName,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// SetVoice changes the voice used for later announcements.
func (s *CommandSpeaker) SetVoice(v string) {
	s.mu.Lock()
	s.voice = v
	s.mu.Unlock()
}

// Voice returns the current voice identifier.
func (s *CommandSpeaker) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

func (s *CommandSpeaker) command(text string) (string, []string) {
	v := s.Voice()
	if s.GOOS == "darwin" {
		if v == "" {
			return "say", []string{text}
		}
		return "say", []string{"-v", v, text}
	}
	if v == "" {
		return "espeak", []string{text}
	}
	return "espeak", []string{"-v", v, text}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	if s.Out != nil {
		fmt.Fprintf(s.Out, "Assistant: %s\n", text)
	}

	s.mu.Lock()
	muted := s.muted
	s.mu.Unlock()
	if muted {
		return nil
	}

	name, args := s.command(text)
	err := s.Run(ctx, name, args...)
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		s.mu.Lock()
		s.muted = true
		if !s.warnedOff {
			s.warnedOff = true
			log.Printf("Warning: %s is not installed; announcements will be printed only", name)
		}
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("speak: %w", err)
}

// MultiSpeaker speaks through every member in order. Failures are logged
// and do not stop the remaining members.
type MultiSpeaker []Speaker

func (m MultiSpeaker) Speak(ctx context.Context, text string) error {
	var errs []error
	for _, s := range m {
		if err := s.Speak(ctx, text); err != nil {
			log.Printf("speaker error: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
