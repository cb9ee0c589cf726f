// Package config loads client settings: built-in defaults, then
// config.toml from the user config dir, then .env/.env.local (existing
// environment wins), then EDUMENTOR_* environment overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultBackendURL     = "http://127.0.0.1:8000"
	DefaultTimeoutSeconds = 60
	DefaultVoice          = "Rachel"
	DefaultRecordSeconds  = 6
)

type Config struct {
	Backend    BackendConfig    `toml:"backend"`
	ElevenLabs ElevenLabsConfig `toml:"elevenlabs"`
	Mic        MicConfig        `toml:"mic"`
	Mute       bool             `toml:"mute"`
	Verbose    bool             `toml:"verbose"`

	// ElevenLabsAPIKey comes from the environment only; it is never read
	// from or written to the config file.
	ElevenLabsAPIKey string `toml:"-"`
}

type BackendConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ElevenLabsConfig struct {
	BaseURL string `toml:"base_url"`
	Voice   string `toml:"voice"`
}

type MicConfig struct {
	Device        string `toml:"device"`
	RecordSeconds int    `toml:"record_seconds"`
}

func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:            DefaultBackendURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		ElevenLabs: ElevenLabsConfig{
			BaseURL: "https://api.elevenlabs.io",
			Voice:   DefaultVoice,
		},
		Mic: MicConfig{
			RecordSeconds: DefaultRecordSeconds,
		},
	}
}

func Load() (Config, error) {
	if err := loadDotEnvPrecedence(); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := mergeUserConfig(&cfg); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	return cfg, nil
}

// StateDir returns (and creates) the directory holding the session journal.
func StateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "edumentor")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func loadDotEnvPrecedence() error {
	for _, name := range []string{".env", ".env.local"} {
		values, err := godotenv.Read(name)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, exists := os.LookupEnv(k); !exists {
				if setErr := os.Setenv(k, v); setErr != nil {
					return setErr
				}
			}
		}
	}
	return nil
}

func mergeUserConfig(cfg *Config) error {
	base, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(base, "edumentor", "config.toml")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	_, err = toml.DecodeFile(path, cfg)
	return err
}

func mergeEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("EDUMENTOR_BACKEND_URL")); v != "" {
		cfg.Backend.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("EDUMENTOR_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Backend.TimeoutSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("EDUMENTOR_MIC_DEVICE")); v != "" {
		cfg.Mic.Device = v
	}
	if v := strings.TrimSpace(os.Getenv("EDUMENTOR_MUTE")); v != "" {
		cfg.Mute = v == "1" || strings.EqualFold(v, "true")
	}
	if v := strings.TrimSpace(os.Getenv("EDUMENTOR_VERBOSE")); v != "" {
		cfg.Verbose = v == "1" || strings.EqualFold(v, "true")
	}
	if v := strings.TrimSpace(os.Getenv("ELEVENLABS_BASE_URL")); v != "" {
		cfg.ElevenLabs.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ELEVENLABS_TTS_VOICE_ID")); v != "" {
		cfg.ElevenLabs.Voice = v
	}
	cfg.ElevenLabsAPIKey = strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY"))
}
