package memory

import (
	"sync"

	"clipsync/internal/domain/device"
	"clipsync/internal/domain/group"
	"clipsync/internal/domain/item"
	"clipsync/internal/domain/session"
)

// Storage хранилище реле в памяти. Используется при пустом DATABASE_URI
// и в тестах. Семантика репозиториев совпадает с postgres-реализацией,
// но данные не переживают перезапуск.
type Storage struct {
	groups   *GroupRepository
	devices  *DeviceRepository
	sessions *SessionRepository
	items    *ItemRepository
}

// state общая память всех репозиториев под одним мьютексом
type state struct {
	mu sync.RWMutex

	groups  map[string]group.SyncGroup
	devices map[string]device.Device
	tokens  map[string]session.Token        // ключ: hex-хэш токена
	items   map[string]map[string]item.Item // группа -> запись
	seq     int64
}

func New() *Storage {
	st := &state{
		groups:  make(map[string]group.SyncGroup),
		devices: make(map[string]device.Device),
		tokens:  make(map[string]session.Token),
		items:   make(map[string]map[string]item.Item),
	}

	return &Storage{
		groups:   &GroupRepository{st: st},
		devices:  &DeviceRepository{st: st},
		sessions: &SessionRepository{st: st},
		items:    &ItemRepository{st: st},
	}
}

func (s *Storage) Groups() group.Repository     { return s.groups }
func (s *Storage) Devices() device.Repository   { return s.devices }
func (s *Storage) Sessions() session.Repository { return s.sessions }
func (s *Storage) Items() item.Repository       { return s.items }

func (s *Storage) Close() error {
	return nil
}
