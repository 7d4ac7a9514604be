package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"clipsync/internal/app/client/crypto"
	"clipsync/internal/domain/clip"
	"clipsync/internal/domain/item"
)

const (
	// Сервер принимает не больше ста записей за один запрос
	pushChunkSize = 100
	pullPageSize  = 100

	eventBuffer = 8
)

// SyncState фаза жизненного цикла синхронизации
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncRunning SyncState = "syncing"
	SyncSuccess SyncState = "success"
	SyncFailed  SyncState = "error"
)

// Event событие смены состояния синхронизации
type Event struct {
	State   SyncState
	Applied int
	Err     error
	At      time.Time
}

// SyncResult итоги одного цикла синхронизации
type SyncResult struct {
	Pushed    int      // записей принято сервером
	Applied   int      // записей применено локально
	Removed   int      // локальных записей удалено по надгробиям
	Skipped   int      // пропущено: свои, дубликаты, нечитаемые, проигравшие слияние
	Conflicts []string // идентификаторы, проигравшие LWW на сервере
	Duration  time.Duration
}

// Stats сводка состояния синхронизации для команды статуса
type Stats struct {
	Syncing   bool
	LastSync  time.Time
	LastError error
}

// relayClient операции реле, которые использует цикл синхронизации
type relayClient interface {
	Push(ctx context.Context, req item.PushRequest) (*item.PushResponse, error)
	Pull(ctx context.Context, req item.PullRequest) (*item.PullResponse, error)
	Delete(ctx context.Context, req item.DeleteRequest) (*item.DeleteResponse, error)
}

// Syncer выполняет двухфазный цикл синхронизации: сначала отправка
// локальных изменений, затем прием чужих. Отметка синхронизации
// продвигается по серверному времени и только после полного цикла,
// поэтому прерванный цикл безопасно повторяется с той же отметки.
// Планировщик снаружи: Syncer не владеет таймером.
type Syncer struct {
	storage  Storage
	relay    relayClient
	codec    *crypto.Codec
	deviceID string
	log      *slog.Logger

	mu        gosync.RWMutex
	isSyncing bool
	lastSync  time.Time
	lastErr   error

	events chan Event
}

func NewSyncer(storage Storage, relay relayClient, codec *crypto.Codec, deviceID string, log *slog.Logger) *Syncer {
	return &Syncer{
		storage:  storage,
		relay:    relay,
		codec:    codec,
		deviceID: deviceID,
		log:      log,
		events:   make(chan Event, eventBuffer),
	}
}

// Events возвращает канал событий синхронизации. События не блокируют
// цикл: при переполненном буфере они отбрасываются.
func (s *Syncer) Events() <-chan Event {
	return s.events
}

// IsSyncing сообщает, выполняется ли цикл прямо сейчас
func (s *Syncer) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// Stats возвращает сводку последнего цикла
func (s *Syncer) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Syncing:   s.isSyncing,
		LastSync:  s.lastSync,
		LastError: s.lastErr,
	}
}

// RunCycle выполняет один цикл синхронизации. Повторный вызов во время
// работающего цикла сразу возвращает ErrSyncInProgress, не вставая в
// очередь.
func (s *Syncer) RunCycle(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	s.emit(Event{State: SyncRunning, At: time.Now()})
	started := time.Now()

	result, err := s.runCycle(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			err = fmt.Errorf("%w: %v", ErrRePairRequired, err)
		}

		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()

		s.log.Error("Синхронизация завершилась ошибкой", "error", err)
		s.emit(Event{State: SyncFailed, Err: err, At: time.Now()})
		return nil, err
	}

	result.Duration = time.Since(started)

	s.mu.Lock()
	s.lastSync = time.Now()
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Info("Синхронизация завершена",
		"pushed", result.Pushed,
		"applied", result.Applied,
		"removed", result.Removed,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)
	s.emit(Event{State: SyncSuccess, Applied: result.Applied, At: time.Now()})

	return result, nil
}

func (s *Syncer) runCycle(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	mark, err := s.highWaterMark()
	if err != nil {
		return nil, err
	}

	if err := s.pushLocal(ctx, mark, result); err != nil {
		return nil, err
	}

	serverTime, err := s.pullRemote(ctx, mark, result)
	if err != nil {
		return nil, err
	}

	// Отметка продвигается по серверному времени, не по локальным часам
	if err := s.storage.SetState(stateHighWaterMark, strconv.FormatInt(serverTime, 10)); err != nil {
		return nil, fmt.Errorf("ошибка сохранения отметки синхронизации: %w", err)
	}

	return result, nil
}

func (s *Syncer) highWaterMark() (int64, error) {
	raw, err := s.storage.GetState(stateHighWaterMark)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения отметки синхронизации: %w", err)
	}
	if raw == "" {
		return 0, nil
	}

	mark, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректная отметка синхронизации: %w", err)
	}

	return mark, nil
}

// pushLocal отправляет на реле локальные изменения после отметки mark.
// Запись, которую не удалось закодировать или зашифровать, пишется в
// журнал и пропускается до следующего цикла.
func (s *Syncer) pushLocal(ctx context.Context, mark int64, result *SyncResult) error {
	modified, err := s.storage.ListModifiedSince(mark)
	if err != nil {
		return fmt.Errorf("ошибка чтения локальных изменений: %w", err)
	}

	var batch []item.SyncItem
	var deleted []string
	for _, stored := range modified {
		if stored.Deleted {
			deleted = append(deleted, stored.Clip.SyncID)
			continue
		}

		wire, err := s.encodeClip(stored)
		if err != nil {
			s.log.Warn("Запись пропущена в этом цикле", "sync_id", stored.Clip.SyncID, "error", err)
			result.Skipped++
			continue
		}
		batch = append(batch, wire)
	}

	for len(batch) > 0 {
		n := len(batch)
		if n > pushChunkSize {
			n = pushChunkSize
		}
		chunk := batch[:n]
		batch = batch[n:]

		resp, err := s.relay.Push(ctx, item.PushRequest{Items: chunk})
		if err != nil {
			return fmt.Errorf("ошибка отправки записей: %w", err)
		}

		result.Pushed += resp.Accepted
		result.Conflicts = append(result.Conflicts, resp.Conflicts...)
	}

	for len(deleted) > 0 {
		n := len(deleted)
		if n > pushChunkSize {
			n = pushChunkSize
		}
		chunk := deleted[:n]
		deleted = deleted[n:]

		resp, err := s.relay.Delete(ctx, item.DeleteRequest{IDs: chunk})
		if err != nil {
			return fmt.Errorf("ошибка отправки удалений: %w", err)
		}

		s.log.Debug("Удаления отправлены", "sent", len(chunk), "deleted", resp.Deleted)
	}

	return nil
}

func (s *Syncer) encodeClip(stored *StoredClip) (item.SyncItem, error) {
	plaintext, err := clip.Marshal(&stored.Clip)
	if err != nil {
		return item.SyncItem{}, err
	}

	// В wire-формат уходит дайджест содержимого, а не всей записи:
	// только он совпадает у дубликатов с разных устройств
	digest, err := clip.ContentDigest(&stored.Clip)
	if err != nil {
		return item.SyncItem{}, err
	}

	ciphertext, nonce, _, err := s.codec.Encrypt(plaintext)
	if err != nil {
		return item.SyncItem{}, err
	}

	if stored.Digest != digest {
		stored.Digest = digest
		if err := s.storage.UpdateClip(stored); err != nil {
			s.log.Warn("Не удалось сохранить дайджест", "sync_id", stored.Clip.SyncID, "error", err)
		}
	}

	return item.SyncItem{
		ID:         stored.Clip.SyncID,
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		UpdatedAt:  stored.UpdatedAt,
		Digest:     digest,
		Size:       int64(len(plaintext)),
	}, nil
}

// pullRemote принимает чужие изменения постранично и возвращает
// серверное время для новой отметки. Если ни одну чужую запись не
// удалось расшифровать, ключ группы не совпадает и цикл прерывается
// с ErrRePairRequired.
func (s *Syncer) pullRemote(ctx context.Context, mark int64, result *SyncResult) (int64, error) {
	since := mark
	var serverTime int64
	var others, failures int

	for {
		resp, err := s.relay.Pull(ctx, item.PullRequest{Since: since, Limit: pullPageSize})
		if err != nil {
			return 0, fmt.Errorf("ошибка получения изменений: %w", err)
		}

		serverTime = resp.ServerTime

		var pageMax int64
		for _, wire := range resp.Items {
			if wire.UpdatedAt > pageMax {
				pageMax = wire.UpdatedAt
			}

			if wire.DeviceID == s.deviceID {
				continue
			}

			if wire.Deleted {
				if err := s.storage.MarkDeleted(wire.ID, wire.UpdatedAt); err != nil {
					s.log.Warn("Надгробие не применено", "id", wire.ID, "error", err)
					result.Skipped++
					continue
				}
				result.Removed++
				continue
			}

			others++
			if err := s.applyItem(wire, result); err != nil {
				if errors.Is(err, crypto.ErrDecryptionFailed) {
					failures++
				}
				s.log.Warn("Запись не применена", "id", wire.ID, "error", err)
				result.Skipped++
			}
		}

		if !resp.HasMore {
			break
		}
		if pageMax <= since {
			// Страница не продвинула курсор, дальше читать нечего
			break
		}
		since = pageMax
	}

	if others > 0 && failures == others {
		return 0, fmt.Errorf("%w: ни одна полученная запись не расшифрована", ErrRePairRequired)
	}

	return serverTime, nil
}

// applyItem расшифровывает чужую запись и сливает ее с локальной.
// Конфликт по одному sync id решается в пользу большего счетчика
// копирований, затем более позднего времени копирования, при равенстве
// остается локальная версия. Запись с уже известным дайджестом под
// другим идентификатором пропускается как дубликат.
func (s *Syncer) applyItem(wire item.SyncItem, result *SyncResult) error {
	ciphertext, err := base64.StdEncoding.DecodeString(wire.Ciphertext)
	if err != nil {
		return fmt.Errorf("ciphertext не в base64: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(wire.Nonce)
	if err != nil {
		return fmt.Errorf("nonce не в base64: %w", err)
	}

	plaintext, err := s.codec.Decrypt(ciphertext, nonce)
	if err != nil {
		return err
	}

	remote, err := clip.Unmarshal(plaintext)
	if err != nil {
		return err
	}

	local, err := s.storage.GetClip(remote.SyncID)
	switch {
	case err == nil:
		if !preferRemote(&local.Clip, remote) {
			result.Skipped++
			return nil
		}

		local.Clip = *remote
		local.Digest = wire.Digest
		local.UpdatedAt = wire.UpdatedAt
		local.Deleted = false
		if err := s.storage.UpdateClip(local); err != nil {
			return fmt.Errorf("ошибка обновления записи: %w", err)
		}
		result.Applied++
		return nil

	case errors.Is(err, ErrClipNotFound):
		if wire.Digest != "" {
			if _, err := s.storage.FindByDigest(wire.Digest); err == nil {
				result.Skipped++
				return nil
			}
		}

		stored := &StoredClip{Clip: *remote, Digest: wire.Digest, UpdatedAt: wire.UpdatedAt}
		if err := s.storage.SaveClip(stored); err != nil {
			return fmt.Errorf("ошибка сохранения записи: %w", err)
		}
		result.Applied++
		return nil

	default:
		return fmt.Errorf("ошибка чтения локальной записи: %w", err)
	}
}

// preferRemote решает, какая версия записи переживает слияние
func preferRemote(local, remote *clip.Clip) bool {
	if remote.CopyCount != local.CopyCount {
		return remote.CopyCount > local.CopyCount
	}
	if remote.LastCopiedAt != local.LastCopiedAt {
		return remote.LastCopiedAt > local.LastCopiedAt
	}
	return false
}

func (s *Syncer) emit(e Event) {
	select {
	case s.events <- e:
	default:
	}
}
