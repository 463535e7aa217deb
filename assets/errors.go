package assets

import "errors"

// Asset loading errors
var (
	ErrInvalidManifest = errors.New("invalid asset manifest")
	ErrInvalidMesh     = errors.New("invalid mesh data")
	ErrNoDecoder       = errors.New("no decoder for asset kind")
)
