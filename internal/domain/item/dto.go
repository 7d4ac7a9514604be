package item

import "time"

// DTO для API синхронизации записей

// SyncItem wire-представление зашифрованной записи. Бинарные поля
// передаются в base64.
type SyncItem struct {
	ID         string `json:"id" example:"7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f" doc:"UUID записи, стабилен между обновлениями"`
	DeviceID   string `json:"device_id,omitempty" doc:"Устройство-источник, заполняется сервером"`
	Ciphertext string `json:"ciphertext" doc:"Шифротекст с тегом аутентичности, base64"`
	Nonce      string `json:"nonce" doc:"Nonce шифрования, base64 от 12 байт"`
	UpdatedAt  int64  `json:"updated_at" doc:"Логические часы записи, unix-миллисекунды"`
	Deleted    bool   `json:"deleted,omitempty" doc:"Отметка мягкого удаления"`
	Digest     string `json:"digest" doc:"SHA-256 открытого текста, 64 hex-символа"`
	Compressed bool   `json:"compressed,omitempty"`
	Size       int64  `json:"size" minimum:"0" doc:"Заявленный размер открытого текста в байтах"`
}

// PushRequest пакет записей на загрузку
type PushRequest struct {
	Items []SyncItem `json:"items"`
}

// PushResponse итог обработки пакета. Rejected включает и некорректные
// записи, и проигравшие LWW-гонку; последние перечислены в Conflicts.
type PushResponse struct {
	Status     string   `json:"status"`
	Error      string   `json:"error,omitempty"`
	Accepted   int      `json:"accepted"`
	Rejected   int      `json:"rejected"`
	Conflicts  []string `json:"conflicts,omitempty"`
	ServerTime int64    `json:"server_time"`
}

// PullRequest запрос изменений после отметки since
type PullRequest struct {
	Since int64 `json:"since" minimum:"0" default:"0" doc:"Высшая отметка updated_at, уже принятая клиентом"`
	Limit int   `json:"limit" minimum:"1" maximum:"100" default:"100"`
}

// PullResponse страница изменений, включая надгробия удаленных записей
type PullResponse struct {
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	Items      []SyncItem `json:"items"`
	HasMore    bool       `json:"has_more"`
	ServerTime int64      `json:"server_time" doc:"Серверное время, unix-миллисекунды"`
}

// DeleteRequest список записей на мягкое удаление
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// DeleteResponse количество фактически удаленных записей
type DeleteResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Deleted    int64  `json:"deleted"`
	ServerTime int64  `json:"server_time"`
}

// DeviceSummary строка реестра устройств группы
type DeviceSummary struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	LastSeen time.Time `json:"last_seen"`
	Active   bool      `json:"active"`
}

// StatusResponse сводка по группе вызывающего устройства
type StatusResponse struct {
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
	ActiveDevices int             `json:"active_devices"`
	ItemCount     int64           `json:"item_count" doc:"Количество неудаленных записей"`
	TotalSize     int64           `json:"total_size" doc:"Суммарный заявленный размер неудаленных записей"`
	LastActivity  time.Time       `json:"last_activity"`
	Devices       []DeviceSummary `json:"devices"`
}
