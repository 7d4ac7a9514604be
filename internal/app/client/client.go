package client

import (
	"context"
	"fmt"
	"strconv"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/config"
	"clipsync/internal/app/client/crypto"
	"clipsync/internal/app/client/pairing"
	"clipsync/internal/domain/clip"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/item"
)

// App собирает клиентскую часть: локальное хранилище, хранилище ключа,
// клиент реле и цикл синхронизации. Команды CLI работают только через App.
type App struct {
	config  *config.Config
	log     *slog.Logger
	storage Storage
	keys    *crypto.KeyStore
	relay   *httpClient
	codec   *crypto.Codec
	syncer  *Syncer

	mu       gosync.RWMutex
	deviceID string
	groupID  string
	endpoint string
	token    string
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	var storage Storage
	sqliteStorage, err := NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		storage = NewMemoryStorage()
	} else {
		storage = sqliteStorage
	}

	keys, err := crypto.NewKeyStore(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища ключа: %w", err)
	}

	app := &App{
		config:  cfg,
		log:     log,
		storage: storage,
		keys:    keys,
	}

	if err := app.loadState(); err != nil {
		return nil, err
	}

	if app.endpoint == "" {
		app.endpoint = cfg.RelayAddress
	}

	app.relay, err = NewHTTPClient(app.endpoint, log)
	if err != nil {
		return nil, err
	}
	if app.token != "" {
		app.relay.SetToken(app.token)
	}

	if key, err := keys.Load(); err == nil {
		app.codec, err = crypto.NewCodec(key)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации шифрования: %w", err)
		}
	}

	app.rebuildSyncer()

	return app, nil
}

func (a *App) loadState() error {
	var err error
	if a.deviceID, err = a.storage.GetState(stateDeviceID); err != nil {
		return fmt.Errorf("ошибка чтения состояния: %w", err)
	}
	if a.groupID, err = a.storage.GetState(stateSyncGroupID); err != nil {
		return fmt.Errorf("ошибка чтения состояния: %w", err)
	}
	if a.endpoint, err = a.storage.GetState(stateEndpoint); err != nil {
		return fmt.Errorf("ошибка чтения состояния: %w", err)
	}
	if a.token, err = a.storage.GetState(stateToken); err != nil {
		return fmt.Errorf("ошибка чтения состояния: %w", err)
	}
	return nil
}

// Close освобождает ресурсы приложения
func (a *App) Close() error {
	return a.storage.Close()
}

// Init готовит устройство к работе: база создана конструктором,
// здесь генерируются мастер-ключ и идентификатор устройства,
// если их еще нет.
func (a *App) Init() error {
	if !a.keys.Exists() {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		if err := a.keys.Store(key); err != nil {
			return err
		}
		if a.codec, err = crypto.NewCodec(key); err != nil {
			return fmt.Errorf("ошибка инициализации шифрования: %w", err)
		}
		a.log.Info("Мастер-ключ создан", "path", a.config.KeyPath)
	}

	if _, err := a.ensureDeviceID(); err != nil {
		return err
	}

	// Заодно проверяем, что схема хранилища в порядке
	if _, err := a.storage.CountClips(); err != nil {
		return fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	a.rebuildSyncer()

	return nil
}

// IsPaired проверяет, сопряжено ли устройство с группой синхронизации
func (a *App) IsPaired() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.codec != nil && a.groupID != "" && a.deviceID != "" && a.token != ""
}

// GeneratePairing готовит группу на основном устройстве: гарантирует
// ключ, идентификаторы группы и устройства, регистрируется на реле и
// возвращает конфигурацию сопряжения для передачи другим устройствам.
// Конфигурация содержит мастер-ключ, показывается один раз и нигде
// не сохраняется.
func (a *App) GeneratePairing(ctx context.Context) (pairing.Config, error) {
	key, err := a.ensureKey()
	if err != nil {
		return pairing.Config{}, err
	}

	groupID, err := a.ensureGroupID()
	if err != nil {
		return pairing.Config{}, err
	}

	deviceID, err := a.ensureDeviceID()
	if err != nil {
		return pairing.Config{}, err
	}

	if err := a.register(ctx); err != nil {
		return pairing.Config{}, err
	}
	a.rebuildSyncer()

	return pairing.New(groupID, key, a.endpoint, deviceID)
}

// JoinPairing присоединяет устройство к чужой группе по конфигурации
// сопряжения: сохраняет ключ, группу и адрес реле, регистрируется.
// Идентификатор устройства в конфигурации принадлежит основному
// устройству, присоединяющееся всегда использует собственный.
func (a *App) JoinPairing(ctx context.Context, pc pairing.Config) error {
	key, err := pc.MasterKey()
	if err != nil {
		return err
	}

	if err := a.keys.Store(key); err != nil {
		return err
	}

	codec, err := crypto.NewCodec(key)
	if err != nil {
		return fmt.Errorf("ошибка инициализации шифрования: %w", err)
	}

	relay, err := NewHTTPClient(pc.Endpoint, a.log)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.codec = codec
	a.relay = relay
	a.groupID = pc.SyncGroupID
	a.endpoint = pc.Endpoint
	a.mu.Unlock()

	if err := a.storage.SetState(stateSyncGroupID, pc.SyncGroupID); err != nil {
		return fmt.Errorf("ошибка сохранения состояния: %w", err)
	}
	if err := a.storage.SetState(stateEndpoint, pc.Endpoint); err != nil {
		return fmt.Errorf("ошибка сохранения состояния: %w", err)
	}

	if _, err := a.ensureDeviceID(); err != nil {
		return err
	}

	if err := a.register(ctx); err != nil {
		return err
	}
	a.rebuildSyncer()

	return nil
}

// PairingInfo состояние сопряжения для отображения. Сам ключ наружу
// не выходит, только отпечаток.
type PairingInfo struct {
	Paired         bool
	GroupID        string
	DeviceID       string
	Endpoint       string
	KeyFingerprint string
	HasToken       bool
}

// PairingStatus возвращает текущее состояние сопряжения
func (a *App) PairingStatus() PairingInfo {
	a.mu.RLock()
	info := PairingInfo{
		GroupID:  a.groupID,
		DeviceID: a.deviceID,
		Endpoint: a.endpoint,
		HasToken: a.token != "",
	}
	a.mu.RUnlock()

	info.Paired = a.IsPaired()
	if key, err := a.keys.Load(); err == nil {
		info.KeyFingerprint = crypto.Digest(key)[:12]
	}

	return info
}

// AddClip создает локальную запись истории буфера обмена
func (a *App) AddClip(title, sourceApp string, contents []clip.Content) (*StoredClip, error) {
	now := time.Now().UnixMilli()
	c := clip.Clip{
		SyncID:       uuid.NewString(),
		DeviceID:     a.deviceID,
		Title:        title,
		SourceApp:    sourceApp,
		CreatedAt:    now,
		LastCopiedAt: now,
		CopyCount:    1,
		Contents:     contents,
	}

	// Дайджест считается сразу, он же проверяет типы содержимого
	digest, err := clip.ContentDigest(&c)
	if err != nil {
		return nil, err
	}

	stored := &StoredClip{Clip: c, Digest: digest, UpdatedAt: now}
	if err := a.storage.SaveClip(stored); err != nil {
		return nil, fmt.Errorf("ошибка сохранения записи: %w", err)
	}

	return stored, nil
}

// ListClips возвращает неудаленные записи, свежескопированные первыми
func (a *App) ListClips() ([]*StoredClip, error) {
	return a.storage.ListClips(false)
}

// GetClip возвращает запись по идентификатору
func (a *App) GetClip(syncID string) (*StoredClip, error) {
	stored, err := a.storage.GetClip(syncID)
	if err != nil {
		return nil, err
	}
	if stored.Deleted {
		return nil, ErrClipNotFound
	}
	return stored, nil
}

// MarkCopied отмечает копирование записи: счетчик и время копирования
// растут, запись уходит на реле при следующем цикле
func (a *App) MarkCopied(syncID string) (*StoredClip, error) {
	stored, err := a.GetClip(syncID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	stored.Clip.CopyCount++
	stored.Clip.LastCopiedAt = now
	stored.UpdatedAt = now

	if err := a.storage.UpdateClip(stored); err != nil {
		return nil, fmt.Errorf("ошибка обновления записи: %w", err)
	}

	return stored, nil
}

// DeleteClip помечает запись удаленной и по возможности сразу
// доставляет удаление на реле. При недоступном реле удаление
// повторит следующий цикл синхронизации.
func (a *App) DeleteClip(ctx context.Context, syncID string) error {
	stored, err := a.storage.GetClip(syncID)
	if err != nil {
		return err
	}
	if stored.Deleted {
		return nil
	}

	if err := a.storage.MarkDeleted(syncID, time.Now().UnixMilli()); err != nil {
		return err
	}

	if a.IsPaired() {
		if _, err := a.relay.Delete(ctx, item.DeleteRequest{IDs: []string{syncID}}); err != nil {
			a.log.Warn("Не удалось отправить удаление на реле", "sync_id", syncID, "error", err)
		}
	}

	return nil
}

// SyncInterval интервал автосинхронизации из конфигурации
func (a *App) SyncInterval() time.Duration {
	return time.Duration(a.config.SyncInterval) * time.Second
}

// Sync выполняет один цикл синхронизации
func (a *App) Sync(ctx context.Context) (*SyncResult, error) {
	if !a.IsPaired() || a.syncer == nil {
		return nil, ErrNotPaired
	}
	return a.syncer.RunCycle(ctx)
}

// SyncEvents возвращает канал событий синхронизации, nil до сопряжения
func (a *App) SyncEvents() <-chan Event {
	if a.syncer == nil {
		return nil
	}
	return a.syncer.Events()
}

// SyncStatusInfo сводка для команды sync status
type SyncStatusInfo struct {
	Paired    bool
	DeviceID  string
	GroupID   string
	Endpoint  string
	ClipCount int
	HighWater int64
	Stats     Stats
	Relay     *item.StatusResponse // nil, если реле недоступно или нет сопряжения
}

// SyncStatus собирает локальное состояние синхронизации и, если
// устройство сопряжено, сводку группы с реле
func (a *App) SyncStatus(ctx context.Context) (*SyncStatusInfo, error) {
	a.mu.RLock()
	info := &SyncStatusInfo{
		DeviceID: a.deviceID,
		GroupID:  a.groupID,
		Endpoint: a.endpoint,
	}
	a.mu.RUnlock()
	info.Paired = a.IsPaired()

	count, err := a.storage.CountClips()
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета записей: %w", err)
	}
	info.ClipCount = count

	if raw, err := a.storage.GetState(stateHighWaterMark); err == nil && raw != "" {
		info.HighWater, _ = strconv.ParseInt(raw, 10, 64)
	}

	if a.syncer != nil {
		info.Stats = a.syncer.Stats()
	}

	if info.Paired {
		relayStatus, err := a.relay.Status(ctx)
		if err != nil {
			a.log.Warn("Реле недоступно", "error", err)
		} else {
			info.Relay = relayStatus
		}
	}

	return info, nil
}

// Devices возвращает реестр устройств группы с реле
func (a *App) Devices(ctx context.Context) ([]item.DeviceSummary, error) {
	if !a.IsPaired() {
		return nil, ErrNotPaired
	}

	resp, err := a.relay.Status(ctx)
	if err != nil {
		return nil, err
	}

	return resp.Devices, nil
}

// CheckConnection проверяет доступность реле
func (a *App) CheckConnection(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return a.relay.HealthCheck(checkCtx)
}

func (a *App) register(ctx context.Context) error {
	a.mu.RLock()
	req := device.RegisterRequest{
		SyncGroupID: a.groupID,
		DeviceID:    a.deviceID,
		DeviceName:  a.config.DeviceName,
		DeviceType:  a.config.DeviceType,
	}
	a.mu.RUnlock()

	resp, err := a.relay.Register(ctx, req)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.token = resp.Token
	a.mu.Unlock()
	a.relay.SetToken(resp.Token)

	if err := a.storage.SetState(stateToken, resp.Token); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}

	a.log.Info("Устройство зарегистрировано",
		"device_id", req.DeviceID,
		"group_id", req.SyncGroupID,
	)

	return nil
}

func (a *App) ensureKey() ([]byte, error) {
	if key, err := a.keys.Load(); err == nil {
		return key, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := a.keys.Store(key); err != nil {
		return nil, err
	}

	codec, err := crypto.NewCodec(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации шифрования: %w", err)
	}

	a.mu.Lock()
	a.codec = codec
	a.mu.Unlock()

	return key, nil
}

func (a *App) ensureGroupID() (string, error) {
	a.mu.RLock()
	groupID := a.groupID
	a.mu.RUnlock()
	if groupID != "" {
		return groupID, nil
	}

	groupID = uuid.NewString()
	if err := a.storage.SetState(stateSyncGroupID, groupID); err != nil {
		return "", fmt.Errorf("ошибка сохранения состояния: %w", err)
	}

	a.mu.Lock()
	a.groupID = groupID
	a.mu.Unlock()

	return groupID, nil
}

func (a *App) ensureDeviceID() (string, error) {
	a.mu.RLock()
	deviceID := a.deviceID
	a.mu.RUnlock()
	if deviceID != "" {
		return deviceID, nil
	}

	deviceID = uuid.NewString()
	if err := a.storage.SetState(stateDeviceID, deviceID); err != nil {
		return "", fmt.Errorf("ошибка сохранения состояния: %w", err)
	}

	a.mu.Lock()
	a.deviceID = deviceID
	a.mu.Unlock()

	return deviceID, nil
}

func (a *App) rebuildSyncer() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.codec == nil || a.deviceID == "" {
		return
	}
	a.syncer = NewSyncer(a.storage, a.relay, a.codec, a.deviceID, a.log)
}
