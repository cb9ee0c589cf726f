package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolateConfigDir points the user config dir at a temp directory so tests
// never read a developer's real config.toml.
func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EDUMENTOR_BACKEND_URL", "EDUMENTOR_TIMEOUT_SECONDS", "EDUMENTOR_MIC_DEVICE",
		"EDUMENTOR_MUTE", "EDUMENTOR_VERBOSE",
		"ELEVENLABS_BASE_URL", "ELEVENLABS_TTS_VOICE_ID", "ELEVENLABS_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateConfigDir(t)
	clearEnvOverrides(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != DefaultBackendURL {
		t.Errorf("backend URL = %q, want default", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("timeout = %d, want default", cfg.Backend.TimeoutSeconds)
	}
	if cfg.ElevenLabs.Voice != DefaultVoice {
		t.Errorf("voice = %q, want default", cfg.ElevenLabs.Voice)
	}
	if cfg.Mic.RecordSeconds != DefaultRecordSeconds {
		t.Errorf("record seconds = %d, want default", cfg.Mic.RecordSeconds)
	}
}

func TestLoadReadsUserConfigFile(t *testing.T) {
	dir := isolateConfigDir(t)
	clearEnvOverrides(t)

	appDir := filepath.Join(dir, "edumentor")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	content := `mute = true

[backend]
url = "http://backend.test:9000"
timeout_seconds = 15

[mic]
device = "hw:1"
`
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != "http://backend.test:9000" {
		t.Errorf("backend URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSeconds != 15 {
		t.Errorf("timeout = %d, want 15", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Mic.Device != "hw:1" {
		t.Errorf("mic device = %q", cfg.Mic.Device)
	}
	if !cfg.Mute {
		t.Error("mute should come from the file")
	}
	// Unset file keys keep their defaults.
	if cfg.ElevenLabs.Voice != DefaultVoice {
		t.Errorf("voice = %q, want default", cfg.ElevenLabs.Voice)
	}
}

func TestEnvOverridesFileAndDefaults(t *testing.T) {
	dir := isolateConfigDir(t)
	clearEnvOverrides(t)

	appDir := filepath.Join(dir, "edumentor")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte("[backend]\nurl = \"http://from-file\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Setenv("EDUMENTOR_BACKEND_URL", "http://from-env")
	t.Setenv("EDUMENTOR_TIMEOUT_SECONDS", "90")
	t.Setenv("EDUMENTOR_VERBOSE", "1")
	t.Setenv("ELEVENLABS_API_KEY", "secret-key")
	t.Setenv("ELEVENLABS_TTS_VOICE_ID", "custom-voice")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != "http://from-env" {
		t.Errorf("backend URL = %q, env must beat file", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSeconds != 90 {
		t.Errorf("timeout = %d, want 90", cfg.Backend.TimeoutSeconds)
	}
	if !cfg.Verbose {
		t.Error("verbose should come from env")
	}
	if cfg.ElevenLabsAPIKey != "secret-key" {
		t.Errorf("api key = %q", cfg.ElevenLabsAPIKey)
	}
	if cfg.ElevenLabs.Voice != "custom-voice" {
		t.Errorf("voice = %q", cfg.ElevenLabs.Voice)
	}
}

func TestBadTimeoutEnvIsIgnored(t *testing.T) {
	isolateConfigDir(t)
	clearEnvOverrides(t)
	t.Setenv("EDUMENTOR_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("timeout = %d, want default when env is garbage", cfg.Backend.TimeoutSeconds)
	}
}
