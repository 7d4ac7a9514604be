package crypto

import "errors"

var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrKeyNotFound      = errors.New("master key not found")
)
