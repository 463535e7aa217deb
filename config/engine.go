// Package config holds the engine's YAML configuration.
package config

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Defaults applied to fields left unset
const (
	DefaultMaxEntities    = 5000
	DefaultFramesInFlight = 2
	DefaultWindowWidth    = 1024
	DefaultWindowHeight   = 768
	DefaultLogLevel       = "info"
	DefaultTitle          = "ebiten-forge"
)

// Window describes the host window
type Window struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
}

// Engine is the top-level configuration file
type Engine struct {
	MaxEntities    int    `yaml:"max_entities"`
	FramesInFlight int    `yaml:"frames_in_flight"`
	LogLevel       string `yaml:"log_level"`
	Window         Window `yaml:"window"`
	// Manifest is the asset manifest path, relative to the config file
	Manifest string `yaml:"manifest"`
}

// Default returns a configuration with every default applied
func Default() Engine {
	var e Engine
	e.applyDefaults()
	return e
}

func (e *Engine) applyDefaults() {
	if e.MaxEntities == 0 {
		e.MaxEntities = DefaultMaxEntities
	}
	if e.FramesInFlight == 0 {
		e.FramesInFlight = DefaultFramesInFlight
	}
	if e.LogLevel == "" {
		e.LogLevel = DefaultLogLevel
	}
	if e.Window.Width == 0 {
		e.Window.Width = DefaultWindowWidth
	}
	if e.Window.Height == 0 {
		e.Window.Height = DefaultWindowHeight
	}
	if e.Window.Title == "" {
		e.Window.Title = DefaultTitle
	}
}

// Validate checks that every field is usable
func (e Engine) Validate() error {
	switch {
	case e.MaxEntities < 1:
		return eris.Wrapf(ErrInvalidConfig, "max_entities must be positive, got %d", e.MaxEntities)
	case e.FramesInFlight < 1:
		return eris.Wrapf(ErrInvalidConfig, "frames_in_flight must be positive, got %d", e.FramesInFlight)
	case e.Window.Width < 1 || e.Window.Height < 1:
		return eris.Wrapf(ErrInvalidConfig, "window size %dx%d", e.Window.Width, e.Window.Height)
	}
	return nil
}

// Parse decodes, defaults and validates a configuration. Unknown keys are
// rejected.
func Parse(r io.Reader) (Engine, error) {
	var e Engine
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&e); err != nil && err != io.EOF {
		return Engine{}, eris.Wrapf(ErrInvalidConfig, "decode: %v", err)
	}
	e.applyDefaults()
	if err := e.Validate(); err != nil {
		return Engine{}, err
	}
	return e, nil
}

// Load reads the configuration at path
func Load(path string) (Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return Engine{}, eris.Wrapf(err, "open config %s", path)
	}
	defer f.Close()
	e, err := Parse(f)
	if err != nil {
		return Engine{}, eris.Wrapf(err, "config %s", path)
	}
	return e, nil
}
