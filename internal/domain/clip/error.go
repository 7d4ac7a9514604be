package clip

import "errors"

var (
	ErrMalformedClip = errors.New("malformed clip payload")
	ErrEmptyClip     = errors.New("clip has no contents")
)
