// Package capture grabs a PNG snapshot of the screen region the study
// material is displayed in, using whichever platform tool is present. A
// capture that decodes to a zero-size image is an error; the pipeline must
// never send an empty picture.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// ErrNothingToCapture is returned when the capture target is not renderable.
var ErrNothingToCapture = errors.New("capture target is not renderable")

// Available reports whether a screenshot tool is installed.
func Available() bool {
	_, err := lookupTool()
	return err == nil
}

func lookupTool() ([][]string, error) {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("screencapture"); err == nil {
			return [][]string{{"screencapture", "-x", "-t", "png"}}, nil
		}
	case "linux":
		var attempts [][]string
		if _, err := exec.LookPath("grim"); err == nil {
			attempts = append(attempts, []string{"grim"})
		}
		if _, err := exec.LookPath("scrot"); err == nil {
			attempts = append(attempts, []string{"scrot", "-o"})
		}
		if _, err := exec.LookPath("import"); err == nil {
			attempts = append(attempts, []string{"import", "-window", "root"})
		}
		if len(attempts) > 0 {
			return attempts, nil
		}
	}
	return nil, fmt.Errorf("no screenshot tool found for %s", runtime.GOOS)
}

// Screen captures the whole display. It implements voice.Capturer.
type Screen struct{}

func (Screen) Capture(ctx context.Context) ([]byte, error) {
	attempts, err := lookupTool()
	if err != nil {
		return nil, err
	}

	out := filepath.Join(os.TempDir(), fmt.Sprintf("edumentor-shot-%d.png", time.Now().UnixNano()))
	defer func() {
		_ = os.Remove(out)
	}()

	var lastErr error
	for _, tool := range attempts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		args := append(append([]string(nil), tool[1:]...), out)
		cmd := exec.CommandContext(ctx, tool[0], args...)
		if err := cmd.Run(); err != nil {
			lastErr = err
			continue
		}
		data, err := os.ReadFile(out)
		if err != nil {
			lastErr = err
			continue
		}
		if err := Validate(data); err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, fmt.Errorf("screenshot failed, last error: %w", lastErr)
}

// Validate checks that data is a non-empty PNG with non-zero bounds.
func Validate(data []byte) error {
	if len(data) == 0 {
		return ErrNothingToCapture
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNothingToCapture, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrNothingToCapture
	}
	return nil
}
