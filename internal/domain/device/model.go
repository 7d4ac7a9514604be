package device

import "time"

// DeviceType тип устройства в группе синхронизации
type DeviceType string

const (
	TypeDesktop DeviceType = "desktop"
	TypePhone   DeviceType = "phone"
	TypeTablet  DeviceType = "tablet"
	TypeOther   DeviceType = "other"
)

// Valid проверяет, что тип устройства входит в список известных
func (t DeviceType) Valid() bool {
	switch t {
	case TypeDesktop, TypePhone, TypeTablet, TypeOther:
		return true
	}
	return false
}

// Device участник группы синхронизации. Устройства никогда не удаляются
// физически: отозванное устройство деактивируется флагом active.
type Device struct {
	ID           string     `json:"id"`
	SyncGroupID  string     `json:"sync_group_id"`
	Name         string     `json:"name"`
	Type         DeviceType `json:"type"`
	RegisteredAt time.Time  `json:"registered_at"`
	LastSeen     time.Time  `json:"last_seen"`
	Active       bool       `json:"active"`
}
