package session

import "errors"

var (
	ErrTokenNotFound  = errors.New("token not found")
	ErrTokenRevoked   = errors.New("token revoked")
	ErrTokenExpired   = errors.New("token expired")
	ErrDeviceInactive = errors.New("device inactive")
)
