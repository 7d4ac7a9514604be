package session

import "context"

// Repository интерфейс для работы с токенами устройств
type Repository interface {
	Create(ctx context.Context, t Token) error
	// FindByHash возвращает запись токена независимо от отзыва и срока
	// действия: различение причин отказа лежит на сервисе
	FindByHash(ctx context.Context, tokenHash string) (Token, error)
	RevokeAllForDevice(ctx context.Context, deviceID string) error
	TouchLastUsed(ctx context.Context, id string) error
}
