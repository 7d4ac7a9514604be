package item

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/session"
)

const (
	nonceSize    = 12
	digestLength = 64
)

// Servicer интерфейс сервиса синхронизации записей
type Servicer interface {
	// Push принимает пакет зашифрованных записей и применяет last-write-wins
	Push(ctx context.Context, req PushRequest) (*PushResponse, error)

	// Pull возвращает изменения группы после отметки since
	Pull(ctx context.Context, req PullRequest) (*PullResponse, error)

	// Delete мягко удаляет записи по списку идентификаторов
	Delete(ctx context.Context, req DeleteRequest) (*DeleteResponse, error)

	// Status возвращает сводку по группе вызывающего устройства
	Status(ctx context.Context) (*StatusResponse, error)
}

// Service реализация сервиса синхронизации записей
type Service struct {
	repo   Repository
	log    *slog.Logger
	config *ServiceConfig
}

// NewService создает новый сервис записей
func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{
			MaxBatch: 100,
		}
	}

	return &Service{
		repo:   repo,
		log:    log,
		config: config,
	}
}

// Push принимает пакет зашифрованных записей и применяет last-write-wins
func (s *Service) Push(ctx context.Context, req PushRequest) (*PushResponse, error) {
	ident, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	// Негабаритный пакет отклоняется целиком, без частичной обработки
	if len(req.Items) > s.config.MaxBatch {
		return nil, fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, len(req.Items), s.config.MaxBatch)
	}

	var (
		accepted  int
		rejected  int
		conflicts []string
	)

	for _, wire := range req.Items {
		it, err := s.itemFromWire(wire, ident)
		if err != nil {
			s.log.Debug("rejected malformed item", "item_id", wire.ID, "error", err)
			rejected++
			continue
		}

		stored, err := s.repo.Upsert(ctx, it)
		if err != nil {
			s.log.Error("upsert failed", "item_id", it.ID, "error", err)
			rejected++
			continue
		}
		if !stored {
			// Существующая запись новее: входящая проиграла LWW-гонку
			conflicts = append(conflicts, it.ID)
			rejected++
			continue
		}

		accepted++
	}

	// Отметки активности не влияют на итог обработки пакета
	if err := s.repo.TouchDevice(ctx, ident.DeviceID); err != nil {
		s.log.Warn("failed to update device last_seen", "error", err)
	}
	if err := s.repo.TouchGroup(ctx, ident.SyncGroupID); err != nil {
		s.log.Warn("failed to update group last_activity", "error", err)
	}

	return &PushResponse{
		Status:     "Ok",
		Accepted:   accepted,
		Rejected:   rejected,
		Conflicts:  conflicts,
		ServerTime: time.Now().UnixMilli(),
	}, nil
}

// Pull возвращает изменения группы после отметки since
func (s *Service) Pull(ctx context.Context, req PullRequest) (*PullResponse, error) {
	ident, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	// Валидация параметров
	limit := req.Limit
	if limit <= 0 {
		limit = s.config.MaxBatch
	}
	if limit > s.config.MaxBatch {
		limit = s.config.MaxBatch
	}

	since := req.Since
	if since < 0 {
		since = 0
	}

	// Запрашиваем на одну запись больше лимита, чтобы узнать о продолжении
	items, err := s.repo.ListSince(ctx, ident.SyncGroupID, since, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	wire := make([]SyncItem, len(items))
	for i, it := range items {
		wire[i] = itemToWire(it)
	}

	if err := s.repo.TouchDevice(ctx, ident.DeviceID); err != nil {
		s.log.Warn("failed to update device last_seen", "error", err)
	}

	return &PullResponse{
		Status:     "Ok",
		Items:      wire,
		HasMore:    hasMore,
		ServerTime: time.Now().UnixMilli(),
	}, nil
}

// Delete мягко удаляет записи по списку идентификаторов
func (s *Service) Delete(ctx context.Context, req DeleteRequest) (*DeleteResponse, error) {
	ident, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	if len(req.IDs) > s.config.MaxBatch {
		return nil, fmt.Errorf("%w: %d ids, limit %d", ErrBatchTooLarge, len(req.IDs), s.config.MaxBatch)
	}

	// Некорректные идентификаторы неотличимы от неизвестных: пропускаются
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}

	now := time.Now().UnixMilli()

	var deleted int64
	if len(ids) > 0 {
		var err error
		deleted, err = s.repo.SoftDelete(ctx, ident.SyncGroupID, ids, now)
		if err != nil {
			return nil, fmt.Errorf("soft delete: %w", err)
		}
	}

	if err := s.repo.TouchDevice(ctx, ident.DeviceID); err != nil {
		s.log.Warn("failed to update device last_seen", "error", err)
	}

	return &DeleteResponse{
		Status:     "Ok",
		Deleted:    deleted,
		ServerTime: now,
	}, nil
}

// Status возвращает сводку по группе вызывающего устройства
func (s *Service) Status(ctx context.Context) (*StatusResponse, error) {
	ident, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	count, totalSize, err := s.repo.CountActive(ctx, ident.SyncGroupID)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	devices, err := s.repo.ListDevices(ctx, ident.SyncGroupID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	activity, err := s.repo.GroupActivity(ctx, ident.SyncGroupID)
	if err != nil {
		return nil, fmt.Errorf("group activity: %w", err)
	}

	activeDevices := 0
	for _, d := range devices {
		if d.Active {
			activeDevices++
		}
	}

	return &StatusResponse{
		Status:        "Ok",
		ActiveDevices: activeDevices,
		ItemCount:     count,
		TotalSize:     totalSize,
		LastActivity:  activity,
		Devices:       devices,
	}, nil
}

// Вспомогательные методы

// itemFromWire проверяет wire-представление и приводит его к записи
// хранилища. Источником записи всегда считается отправившее устройство:
// заявленный в wire device_id игнорируется.
func (s *Service) itemFromWire(wire SyncItem, ident session.Identity) (Item, error) {
	if _, err := uuid.Parse(wire.ID); err != nil {
		return Item{}, fmt.Errorf("id is not a valid UUID")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wire.Ciphertext)
	if err != nil {
		return Item{}, fmt.Errorf("ciphertext is not valid base64")
	}

	nonce, err := base64.StdEncoding.DecodeString(wire.Nonce)
	if err != nil {
		return Item{}, fmt.Errorf("nonce is not valid base64")
	}
	if len(nonce) != nonceSize {
		return Item{}, fmt.Errorf("nonce must be %d bytes, got %d", nonceSize, len(nonce))
	}

	if len(wire.Digest) != digestLength {
		return Item{}, fmt.Errorf("digest must be %d hex characters", digestLength)
	}
	if _, err := hex.DecodeString(wire.Digest); err != nil {
		return Item{}, fmt.Errorf("digest is not valid hex")
	}

	if wire.Size < 0 {
		return Item{}, fmt.Errorf("size must not be negative")
	}
	if wire.UpdatedAt < 0 {
		return Item{}, fmt.Errorf("updated_at must not be negative")
	}

	return Item{
		ID:          wire.ID,
		SyncGroupID: ident.SyncGroupID,
		DeviceID:    ident.DeviceID,
		Ciphertext:  ciphertext,
		Nonce:       nonce,
		UpdatedAt:   wire.UpdatedAt,
		Deleted:     wire.Deleted,
		Digest:      wire.Digest,
		Compressed:  wire.Compressed,
		Size:        wire.Size,
	}, nil
}

func itemToWire(it Item) SyncItem {
	return SyncItem{
		ID:         it.ID,
		DeviceID:   it.DeviceID,
		Ciphertext: base64.StdEncoding.EncodeToString(it.Ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(it.Nonce),
		UpdatedAt:  it.UpdatedAt,
		Deleted:    it.Deleted,
		Digest:     it.Digest,
		Compressed: it.Compressed,
		Size:       it.Size,
	}
}
