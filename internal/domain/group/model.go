package group

import "time"

// SyncGroup анонимная группа устройств с общим мастер-ключом.
// Реле ничего не знает об участниках группы кроме их идентификаторов:
// содержимое записей для него непрозрачно.
type SyncGroup struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}
