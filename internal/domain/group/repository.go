package group

import "context"

// Repository интерфейс для работы с группами синхронизации
type Repository interface {
	// Upsert идемпотентно создает группу. Повторный вызов для существующей
	// группы обновляет last_activity и возвращает текущую запись.
	Upsert(ctx context.Context, id string) (SyncGroup, error)
	Find(ctx context.Context, id string) (SyncGroup, error)
}
