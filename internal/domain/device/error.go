package device

import "errors"

var (
	ErrNotFound     = errors.New("device not found")
	ErrInvalidInput = errors.New("invalid input")
)
