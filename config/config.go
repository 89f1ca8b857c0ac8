// Package config holds the rmxsynth configuration schema and its YAML loader.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l onto a slog level, defaulting to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type (
	// Config is the root configuration structure.
	Config struct {
		// Path of the SF2 soundfont every playback renders with.
		Soundfont string         `yaml:"soundfont"`
		Audio     AudioConfig    `yaml:"audio"`
		Playback  PlaybackConfig `yaml:"playback"`
		Log       LogConfig      `yaml:"log"`
	}

	AudioConfig struct {
		// Seconds of audio the synthesis task may render ahead of playback.
		BufferSeconds float64 `yaml:"buffer_seconds"`
		// Device buffer handed to the speaker. Smaller is more responsive.
		SpeakerBuffer time.Duration `yaml:"speaker_buffer"`
	}

	PlaybackConfig struct {
		// Restart MIDI files when they end instead of stopping.
		Loop bool `yaml:"loop"`
	}

	LogConfig struct {
		Level LogLevel `yaml:"level"`
		// File receives logs while the terminal UI runs. Empty discards them.
		File string `yaml:"file"`
	}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			BufferSeconds: 2,
			SpeakerBuffer: 20 * time.Millisecond,
		},
		Log: LogConfig{Level: LogInfo},
	}
}

// Load reads the YAML configuration file at path and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	if cfg.Audio.BufferSeconds <= 0 {
		errs = append(errs, fmt.Errorf("audio.buffer_seconds must be positive, got %v", cfg.Audio.BufferSeconds))
	}
	if cfg.Audio.BufferSeconds > 60 {
		errs = append(errs, fmt.Errorf("audio.buffer_seconds %v exceeds 60", cfg.Audio.BufferSeconds))
	}
	if cfg.Audio.SpeakerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("audio.speaker_buffer must be positive, got %s", cfg.Audio.SpeakerBuffer))
	}

	return errors.Join(errs...)
}
