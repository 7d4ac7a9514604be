package pairing

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid pairing config")
	ErrUnsupportedVersion = errors.New("unsupported pairing config version")
)
