package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rapidmidiex/rmxsynth/config"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader(t *testing.T) {
	t.Run("fills unset fields from the defaults", func(t *testing.T) {
		cfg, err := config.LoadFromReader(strings.NewReader("soundfont: fonts/GeneralUser.sf2\n"))
		require.NoError(t, err)
		require.Equal(t, "fonts/GeneralUser.sf2", cfg.Soundfont)
		require.Equal(t, 2.0, cfg.Audio.BufferSeconds)
		require.Equal(t, 20*time.Millisecond, cfg.Audio.SpeakerBuffer)
		require.False(t, cfg.Playback.Loop)
		require.Equal(t, config.LogInfo, cfg.Log.Level)
	})

	t.Run("accepts an empty document", func(t *testing.T) {
		cfg, err := config.LoadFromReader(strings.NewReader(""))
		require.NoError(t, err)
		require.Equal(t, config.Default(), cfg)
	})

	t.Run("decodes every section", func(t *testing.T) {
		cfg, err := config.LoadFromReader(strings.NewReader(`
soundfont: a.sf2
audio:
  buffer_seconds: 0.5
  speaker_buffer: 50ms
playback:
  loop: true
log:
  level: debug
  file: rmx.log
`))
		require.NoError(t, err)
		require.Equal(t, 0.5, cfg.Audio.BufferSeconds)
		require.Equal(t, 50*time.Millisecond, cfg.Audio.SpeakerBuffer)
		require.True(t, cfg.Playback.Loop)
		require.Equal(t, config.LogDebug, cfg.Log.Level)
		require.Equal(t, "rmx.log", cfg.Log.File)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := config.LoadFromReader(strings.NewReader("volume: 11\n"))
		require.Error(t, err)
	})

	t.Run("joins every validation failure", func(t *testing.T) {
		_, err := config.LoadFromReader(strings.NewReader(`
audio:
  buffer_seconds: -1
  speaker_buffer: 0s
log:
  level: loud
`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "log.level")
		require.Contains(t, err.Error(), "audio.buffer_seconds")
		require.Contains(t, err.Error(), "audio.speaker_buffer")
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads a file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rmx.yaml")
		require.NoError(t, os.WriteFile(path, []byte("playback:\n  loop: true\n"), 0o644))
		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.True(t, cfg.Playback.Loop)
	})

	t.Run("wraps a missing file error", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLogLevel(t *testing.T) {
	require.True(t, config.LogWarn.IsValid())
	require.False(t, config.LogLevel("trace").IsValid())
	require.Equal(t, "DEBUG", config.LogDebug.Level().String())
	require.Equal(t, "INFO", config.LogLevel("").Level().String())
}
