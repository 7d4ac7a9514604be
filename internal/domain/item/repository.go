package item

import (
	"context"
	"time"
)

// Repository интерфейс хранилища зашифрованных записей. Методы статуса
// и активности затрагивают таблицы устройств и групп: реестр и отметки
// активности живут рядом с записями.
type Repository interface {
	// Записи
	// Upsert атомарно применяет last-write-wins по (sync_group_id, id):
	// возвращает false без изменения строки, если существующая запись
	// имеет строго больший updated_at.
	Upsert(ctx context.Context, it Item) (bool, error)
	// ListSince возвращает до limit записей с updated_at > since,
	// включая надгробия, в порядке updated_at ASC, seq ASC.
	ListSince(ctx context.Context, groupID string, since int64, limit int) ([]Item, error)
	// SoftDelete помечает удаленными еще не удаленные записи из списка,
	// проставляя им updated_at = deletedAt. Возвращает число измененных.
	SoftDelete(ctx context.Context, groupID string, ids []string, deletedAt int64) (int64, error)

	// Статус группы
	CountActive(ctx context.Context, groupID string) (count int64, totalSize int64, err error)
	ListDevices(ctx context.Context, groupID string) ([]DeviceSummary, error)
	GroupActivity(ctx context.Context, groupID string) (time.Time, error)

	// Отметки активности
	TouchDevice(ctx context.Context, deviceID string) error
	TouchGroup(ctx context.Context, groupID string) error
}
