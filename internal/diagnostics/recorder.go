// Package diagnostics saves failure screenshots from the device under test
package diagnostics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ferasOS/calabash-ios/internal/logger"
)

// Screenshotter captures the current device screen as PNG bytes
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Recorder writes screenshots into a directory. A disabled recorder does nothing.
type Recorder struct {
	source  Screenshotter
	dir     string
	enabled bool
}

// NewRecorder creates a screenshot recorder
func NewRecorder(source Screenshotter, dir string, enabled bool) *Recorder {
	if dir == "" {
		dir = "."
	}
	return &Recorder{
		source:  source,
		dir:     dir,
		enabled: enabled && source != nil,
	}
}

// CaptureScreenshot saves a screenshot named after reason and returns its path
func (r *Recorder) CaptureScreenshot(ctx context.Context, reason string) (string, error) {
	if !r.enabled {
		return "", nil
	}

	data, err := r.source.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to take screenshot: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.png", slug(reason), uuid.NewString()[:8])
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	logger.Info("Saved screenshot", "path", path, "reason", reason)
	return path, nil
}

// slug turns a reason into a file name fragment
func slug(reason string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(reason) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "screenshot"
	}
	return out
}
