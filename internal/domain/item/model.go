package item

import "time"

// Item зашифрованная запись буфера обмена в хранилище реле. Содержимое
// для реле непрозрачно: шифротекст, nonce и дайджест открытого текста.
// ID стабилен между обновлениями одной логической записи.
type Item struct {
	ID          string    `json:"id"`
	SyncGroupID string    `json:"sync_group_id"`
	DeviceID    string    `json:"device_id"`
	Ciphertext  []byte    `json:"-"`
	Nonce       []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   int64     `json:"updated_at"`
	Deleted     bool      `json:"deleted"`
	Digest      string    `json:"digest"`
	Compressed  bool      `json:"compressed"`
	Size        int64     `json:"size"`
	Seq         int64     `json:"-"`
}

// ServiceConfig конфигурация сервиса записей
type ServiceConfig struct {
	MaxBatch int `json:"max_batch"`
}
