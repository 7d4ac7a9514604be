package item

import "errors"

var (
	ErrBatchTooLarge    = errors.New("batch size exceeds limit")
	ErrNotAuthenticated = errors.New("device not authenticated")
)
