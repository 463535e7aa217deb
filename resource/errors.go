package resource

import "errors"

// Pool and registry errors
var (
	ErrStaleHandle   = errors.New("stale resource handle")
	ErrUnknownName   = errors.New("unknown resource name")
	ErrDuplicateName = errors.New("resource name already registered")
	ErrNoLoader      = errors.New("pool has no loader")
)
