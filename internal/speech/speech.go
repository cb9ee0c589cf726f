// Package speech provides the host-environment speech capabilities: a
// microphone recognizer (ffmpeg capture + ElevenLabs STT) and a spoken
// synthesizer (ElevenLabs TTS + afplay/ffplay playback). Callers probe
// availability up front and hand nil to the pipeline when a capability is
// absent.
package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"edumentor/internal/elevenlabs"
)

// RecognizerAvailable reports whether microphone capture and transcription
// can work on this system.
func RecognizerAvailable(apiKey string) bool {
	if strings.TrimSpace(apiKey) == "" {
		return false
	}
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// SynthesizerAvailable reports whether audible playback can work.
func SynthesizerAvailable(apiKey string) bool {
	if strings.TrimSpace(apiKey) == "" {
		return false
	}
	if _, err := exec.LookPath("afplay"); err == nil {
		return true
	}
	_, err := exec.LookPath("ffplay")
	return err == nil
}

// MicRecognizer records a short utterance from the microphone and
// transcribes it. It implements voice.Recognizer.
type MicRecognizer struct {
	Client *elevenlabs.Client
	// Device selects the input device (ALSA/pulse name on Linux,
	// avfoundation index on macOS). Empty uses the default.
	Device string
	// RecordSeconds bounds one utterance; zero means 6 seconds.
	RecordSeconds int
}

func (r *MicRecognizer) Listen(ctx context.Context) (string, error) {
	path, err := recordAudio(ctx, r.Device, r.seconds())
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(path)
	}()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return r.Client.Transcribe(ctx, audio)
}

func (r *MicRecognizer) seconds() int {
	if r.RecordSeconds > 0 {
		return r.RecordSeconds
	}
	return 6
}

// recordAudio writes a temporary mono 16 kHz WAV file and returns its path.
// Callers remove the returned file.
func recordAudio(ctx context.Context, device string, seconds int) (string, error) {
	out := filepath.Join(os.TempDir(), fmt.Sprintf("edumentor-%d.wav", time.Now().UnixNano()))
	dur := fmt.Sprintf("%d", seconds)

	var attempts [][]string
	switch runtime.GOOS {
	case "darwin":
		input := ":0"
		if d := strings.TrimSpace(device); d != "" {
			input = ":" + d
		}
		attempts = append(attempts, []string{"-y", "-f", "avfoundation", "-i", input, "-t", dur, "-ac", "1", "-ar", "16000", out})
	case "linux":
		if d := strings.TrimSpace(device); d != "" {
			attempts = append(attempts, []string{"-y", "-f", "alsa", "-i", d, "-t", dur, "-ac", "1", "-ar", "16000", out})
		} else {
			attempts = append(attempts,
				[]string{"-y", "-f", "alsa", "-i", "default", "-t", dur, "-ac", "1", "-ar", "16000", out},
				[]string{"-y", "-f", "pulse", "-i", "default", "-t", dur, "-ac", "1", "-ar", "16000", out},
			)
		}
	default:
		return "", fmt.Errorf("microphone capture is not supported on %s", runtime.GOOS)
	}

	var lastErr error
	for _, args := range attempts {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		cmd := exec.CommandContext(ctx, "ffmpeg", args...)
		if err := cmd.Run(); err == nil {
			return out, nil
		} else {
			lastErr = err
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return "", fmt.Errorf("failed to capture audio, last error: %w", lastErr)
}

// Speaker synthesizes text with ElevenLabs and plays it back locally. It
// implements voice.Synthesizer.
type Speaker struct {
	Client *elevenlabs.Client
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	audio, err := s.Client.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	path, err := writeTempMP3(audio)
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(path)
	}()
	return playAudio(ctx, path)
}

func playAudio(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	if _, err := exec.LookPath("afplay"); err == nil {
		cmd = exec.CommandContext(ctx, "afplay", path)
	} else if _, err := exec.LookPath("ffplay"); err == nil {
		cmd = exec.CommandContext(ctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path)
	} else {
		return fmt.Errorf("no playback binary found (afplay or ffplay)")
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func writeTempMP3(audio []byte) (string, error) {
	out, err := os.CreateTemp(os.TempDir(), "edumentor-answer-*.mp3")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = out.Close()
	}()
	if _, err := out.Write(audio); err != nil {
		return "", err
	}
	return out.Name(), nil
}
