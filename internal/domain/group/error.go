package group

import "errors"

var ErrNotFound = errors.New("sync group not found")
