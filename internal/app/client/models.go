package client

import (
	"sort"
	gosync "sync"

	"clipsync/internal/domain/clip"
)

// Ключи таблицы sync_state
const (
	stateHighWaterMark = "high_water_mark"
	stateSyncGroupID   = "sync_group_id"
	stateDeviceID      = "device_id"
	stateEndpoint      = "endpoint"
	stateToken         = "token"
)

// StoredClip локальная запись истории буфера обмена вместе с
// метаданными синхронизации. UpdatedAt в unix-миллисекундах задается
// вызывающим: локальные правки ставят текущее время, принятые с сервера
// записи сохраняют серверную отметку, чтобы не уходить в повторный push.
type StoredClip struct {
	Clip      clip.Clip
	Digest    string
	UpdatedAt int64
	Deleted   bool
}

// Storage локальное хранилище записей и состояния синхронизации
type Storage interface {
	SaveClip(c *StoredClip) error
	UpdateClip(c *StoredClip) error
	GetClip(syncID string) (*StoredClip, error)
	ListClips(includeDeleted bool) ([]*StoredClip, error)
	ListModifiedSince(ms int64) ([]*StoredClip, error)
	MarkDeleted(syncID string, updatedAt int64) error
	FindByDigest(digest string) (*StoredClip, error)
	GetState(key string) (string, error)
	SetState(key, value string) error
	CountClips() (int, error)
	Close() error
}

// MemoryStorage запасное in-memory хранилище на случай недоступного
// SQLite. Данные живут до завершения процесса.
type MemoryStorage struct {
	mu    gosync.RWMutex
	clips map[string]*StoredClip
	state map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		clips: make(map[string]*StoredClip),
		state: make(map[string]string),
	}
}

func cloneStored(c *StoredClip) *StoredClip {
	cp := *c
	cp.Clip.Contents = make([]clip.Content, len(c.Clip.Contents))
	for i, content := range c.Clip.Contents {
		content.Data = append([]byte(nil), content.Data...)
		cp.Clip.Contents[i] = content
	}
	return &cp
}

func (m *MemoryStorage) SaveClip(c *StoredClip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clips[c.Clip.SyncID]; exists {
		return ErrClipExists
	}
	m.clips[c.Clip.SyncID] = cloneStored(c)
	return nil
}

func (m *MemoryStorage) UpdateClip(c *StoredClip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clips[c.Clip.SyncID]; !exists {
		return ErrClipNotFound
	}
	m.clips[c.Clip.SyncID] = cloneStored(c)
	return nil
}

func (m *MemoryStorage) GetClip(syncID string) (*StoredClip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.clips[syncID]
	if !exists {
		return nil, ErrClipNotFound
	}
	return cloneStored(c), nil
}

func (m *MemoryStorage) ListClips(includeDeleted bool) ([]*StoredClip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clips := make([]*StoredClip, 0, len(m.clips))
	for _, c := range m.clips {
		if c.Deleted && !includeDeleted {
			continue
		}
		clips = append(clips, cloneStored(c))
	}

	sort.Slice(clips, func(i, j int) bool {
		return clips[i].Clip.LastCopiedAt > clips[j].Clip.LastCopiedAt
	})
	return clips, nil
}

func (m *MemoryStorage) ListModifiedSince(ms int64) ([]*StoredClip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clips := make([]*StoredClip, 0)
	for _, c := range m.clips {
		if c.UpdatedAt > ms {
			clips = append(clips, cloneStored(c))
		}
	}

	sort.Slice(clips, func(i, j int) bool {
		return clips[i].UpdatedAt < clips[j].UpdatedAt
	})
	return clips, nil
}

func (m *MemoryStorage) MarkDeleted(syncID string, updatedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, exists := m.clips[syncID]
	if !exists {
		return nil
	}
	c.Deleted = true
	c.UpdatedAt = updatedAt
	return nil
}

func (m *MemoryStorage) FindByDigest(digest string) (*StoredClip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if digest == "" {
		return nil, ErrClipNotFound
	}
	for _, c := range m.clips {
		if !c.Deleted && c.Digest == digest {
			return cloneStored(c), nil
		}
	}
	return nil, ErrClipNotFound
}

func (m *MemoryStorage) GetState(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state[key], nil
}

func (m *MemoryStorage) SetState(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[key] = value
	return nil
}

func (m *MemoryStorage) CountClips() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, c := range m.clips {
		if !c.Deleted {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
