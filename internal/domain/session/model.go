package session

import "time"

// Token учетные данные устройства. Хранится только sha256-хэш значения:
// само значение возвращается устройству один раз при регистрации.
type Token struct {
	ID          string     `json:"id"`
	SyncGroupID string     `json:"sync_group_id"`
	DeviceID    string     `json:"device_id"`
	TokenHash   string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  time.Time  `json:"last_used_at"`
	Revoked     bool       `json:"revoked"`
}

// Identity аутентифицированная пара группа-устройство
type Identity struct {
	SyncGroupID string
	DeviceID    string
}
