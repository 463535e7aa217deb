package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	e, err := Parse(strings.NewReader("window:\n  title: demo\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxEntities, e.MaxEntities)
	assert.Equal(t, DefaultFramesInFlight, e.FramesInFlight)
	assert.Equal(t, "info", e.LogLevel)
	assert.Equal(t, Window{Width: 1024, Height: 768, Title: "demo"}, e.Window)
}

func TestParseEmpty(t *testing.T) {
	e, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), e)
}

func TestParseOverrides(t *testing.T) {
	src := `
max_entities: 128
frames_in_flight: 3
log_level: debug
manifest: assets.yaml
window:
  width: 640
  height: 480
  fullscreen: true
`
	e, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 128, e.MaxEntities)
	assert.Equal(t, 3, e.FramesInFlight)
	assert.Equal(t, "debug", e.LogLevel)
	assert.Equal(t, "assets.yaml", e.Manifest)
	assert.True(t, e.Window.Fullscreen)
	assert.Equal(t, 640, e.Window.Width)
}

func TestParseRejectsInvalid(t *testing.T) {
	for name, src := range map[string]string{
		"negative entities": "max_entities: -1\n",
		"negative frames":   "frames_in_flight: -2\n",
		"bad window":        "window:\n  width: -5\n",
		"unknown key":       "max_entites: 10\n",
		"bad type":          "max_entities: lots\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_entities: 64\n"), 0o644))

	e, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, e.MaxEntities)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
