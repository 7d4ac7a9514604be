package device

import (
	"time"

	"clipsync/internal/domain/group"
)

// DTO для API регистрации устройств

// RegisterRequest запрос на регистрацию устройства в группе
type RegisterRequest struct {
	SyncGroupID string `json:"sync_group_id" example:"0f8fad5b-d9cb-469f-a165-70867728950e" doc:"UUID группы синхронизации"`
	DeviceID    string `json:"device_id" example:"7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f" doc:"UUID устройства, генерируется устройством"`
	DeviceName  string `json:"device_name" doc:"Отображаемое имя устройства"`
	DeviceType  string `json:"device_type" enum:"desktop,phone,tablet,other" doc:"Тип устройства"`
}

// RegisterResponse ответ с новым токеном и записями группы и устройства.
// Токен возвращается единственный раз и на сервере не хранится.
type RegisterResponse struct {
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Group     group.SyncGroup `json:"group,omitempty"`
	Device    Device          `json:"device,omitempty"`
}
