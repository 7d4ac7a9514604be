package device

import "context"

// Repository интерфейс для работы с устройствами
type Repository interface {
	// Upsert создает устройство либо обновляет имя, тип и last_seen
	// существующего, заново активируя его. Возвращает текущую запись.
	Upsert(ctx context.Context, d Device) (Device, error)
	Find(ctx context.Context, id string) (Device, error)
	// IsActive считает неизвестное устройство неактивным, без ошибки
	IsActive(ctx context.Context, id string) (bool, error)
	// Deactivate отзывает устройство, не удаляя его запись
	Deactivate(ctx context.Context, id string) error
}
