package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Screen captures full-screen PNGs into Dir.
type Screen struct {
	Dir  string
	Run  Runner
	GOOS string
	Now  func() time.Time
}

func NewScreen(dir string) *Screen {
	return &Screen{Dir: dir, Run: execRunner, GOOS: runtime.GOOS, Now: time.Now}
}

// Capture saves a screenshot named screenshot_<unix>.png and returns its path.
func (s *Screen) Capture(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("screenshot_%d.png", s.Now().Unix()))

	if s.GOOS == "darwin" {
		if output, err := s.Run(ctx, "screencapture", "-x", path); err != nil {
			return "", fmt.Errorf("error capturing desktop: %w: %s", err, strings.TrimSpace(string(output)))
		}
		return path, nil
	}

	// ffmpeg first, scrot as a fallback
	output, err := s.Run(ctx, "ffmpeg", "-f", "x11grab", "-i", displayName(), "-frames:v", "1", path, "-y")
	if err != nil {
		output, err = s.Run(ctx, "scrot", "-o", path)
		if err != nil {
			return "", fmt.Errorf("error capturing desktop: %w: %s", err, strings.TrimSpace(string(output)))
		}
	}
	return path, nil
}

func displayName() string {
	if d := os.Getenv("DISPLAY"); d != "" {
		return d
	}
	return ":0.0"
}
