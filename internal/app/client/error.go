package client

import "errors"

var (
	ErrClipNotFound   = errors.New("clip not found")
	ErrClipExists     = errors.New("clip already exists")
	ErrNotPaired      = errors.New("device is not paired")
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrRePairRequired = errors.New("re-pair required")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRateLimited    = errors.New("rate limited")
)
