package clip

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Режимы кодирования неизменяемы и безопасны для конкурентного использования.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal сериализует запись в канонический CBOR: одна и та же запись
// всегда даёт одни и те же байты, это нужно для дедупликации по дайджесту.
func Marshal(c *Clip) ([]byte, error) {
	if len(c.Contents) == 0 {
		return nil, ErrEmptyClip
	}
	for _, content := range c.Contents {
		if !content.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown content type %q", ErrMalformedClip, content.Type)
		}
	}

	data, err := encMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedClip, err)
	}

	return data, nil
}

// ContentDigest возвращает hex-дайджест SHA-256 канонических байтов
// содержимого записи. Метаданные в дайджест не входят: одно и то же
// содержимое, скопированное на разных устройствах, дает один дайджест,
// и по нему устройства отсеивают дубликаты.
func ContentDigest(c *Clip) (string, error) {
	if len(c.Contents) == 0 {
		return "", ErrEmptyClip
	}
	for _, content := range c.Contents {
		if !content.Type.Valid() {
			return "", fmt.Errorf("%w: unknown content type %q", ErrMalformedClip, content.Type)
		}
	}

	data, err := encMode.Marshal(c.Contents)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedClip, err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Unmarshal разбирает расшифрованные байты обратно в запись. Любое
// отклонение от ожидаемой структуры, включая неизвестные поля и
// неизвестные типы содержимого, сворачивается в ErrMalformedClip.
func Unmarshal(data []byte) (*Clip, error) {
	var c Clip
	if err := decMode.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedClip, err)
	}

	if len(c.Contents) == 0 {
		return nil, fmt.Errorf("%w: no contents", ErrMalformedClip)
	}
	for _, content := range c.Contents {
		if !content.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown content type %q", ErrMalformedClip, content.Type)
		}
	}

	return &c, nil
}
