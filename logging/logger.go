// Package logging builds the engine's zap logger.
package logging

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Silent disables logging entirely
const Silent = "silent"

// ErrUnknownLevel is returned for level names zap does not recognise
var ErrUnknownLevel = errors.New("unknown log level")

// ParseLevel maps a config level name to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return zapcore.InfoLevel, eris.Wrapf(ErrUnknownLevel, "%q", level)
	}
	return l, nil
}

// New builds a JSON production logger writing to stderr at level. The
// "silent" level returns a no-op logger.
func New(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, Silent) {
		return zap.NewNop(), nil
	}
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	logger, err := config.Build()
	if err != nil {
		return nil, eris.Wrap(err, "build logger")
	}
	return logger, nil
}
