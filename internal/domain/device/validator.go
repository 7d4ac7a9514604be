package device

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const MaxNameLen = 100

// Validator - интерфейс для валидации данных регистрации устройства
type Validator interface {
	ValidateRegister(req RegisterRequest) error
	SanitizeName(name string) string
}

type RegisterValidator struct{}

// NewRegisterValidator создает новый валидатор
func NewRegisterValidator() *RegisterValidator {
	return &RegisterValidator{}
}

// ValidateRegister валидирует запрос на регистрацию устройства
func (v *RegisterValidator) ValidateRegister(req RegisterRequest) error {
	if _, err := uuid.Parse(req.SyncGroupID); err != nil {
		return fmt.Errorf("sync_group_id must be a valid UUID")
	}

	if _, err := uuid.Parse(req.DeviceID); err != nil {
		return fmt.Errorf("device_id must be a valid UUID")
	}

	if v.SanitizeName(req.DeviceName) == "" {
		return fmt.Errorf("device_name must not be empty")
	}

	if !DeviceType(req.DeviceType).Valid() {
		return fmt.Errorf("device_type must be one of desktop, phone, tablet, other")
	}

	return nil
}

// SanitizeName убирает управляющие символы, обрезает пробелы по краям
// и ограничивает имя до MaxNameLen рун
func (v *RegisterValidator) SanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > MaxNameLen {
		cleaned = string(runes[:MaxNameLen])
	}

	return cleaned
}
