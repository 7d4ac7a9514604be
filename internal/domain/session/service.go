package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// DefaultTTL срок действия токена по умолчанию
const DefaultTTL = 720 * time.Hour

// Servicer интерфейс сервиса токенов
type Servicer interface {
	// Issue отзывает прежние токены устройства и выпускает новый
	Issue(ctx context.Context, groupID, deviceID string) (string, *time.Time, error)
	// Validate определяет пару группа-устройство по токену. Отказы
	// различимы: неизвестный, отозванный, просроченный токен и
	// деактивированное устройство возвращают разные ошибки.
	Validate(ctx context.Context, token string) (Identity, error)
}

// DeviceChecker проверяет, что устройство не деактивировано
type DeviceChecker interface {
	IsActive(ctx context.Context, deviceID string) (bool, error)
}

type Service struct {
	repo    Repository
	devices DeviceChecker
	ttl     time.Duration
	log     *slog.Logger
}

// NewService создает новый сервис токенов. ttl = 0 выпускает бессрочные токены.
func NewService(repo Repository, devices DeviceChecker, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		devices: devices,
		ttl:     ttl,
		log:     log,
	}
}

func (s *Service) Issue(ctx context.Context, groupID, deviceID string) (string, *time.Time, error) {
	// У устройства всегда не больше одного действующего токена
	if err := s.repo.RevokeAllForDevice(ctx, deviceID); err != nil {
		return "", nil, fmt.Errorf("revoke old tokens: %w", err)
	}

	// Генерация токена
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)
	tokenHash := sha256.Sum256([]byte(token))

	var expiresAt *time.Time
	if s.ttl > 0 {
		t := time.Now().Add(s.ttl)
		expiresAt = &t
	}

	rec := Token{
		ID:          uuid.NewString(),
		SyncGroupID: groupID,
		DeviceID:    deviceID,
		TokenHash:   hex.EncodeToString(tokenHash[:]),
		ExpiresAt:   expiresAt,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return "", nil, fmt.Errorf("save token: %w", err)
	}

	return token, expiresAt, nil
}

func (s *Service) Validate(ctx context.Context, token string) (Identity, error) {
	tokenHash := sha256.Sum256([]byte(token))

	rec, err := s.repo.FindByHash(ctx, hex.EncodeToString(tokenHash[:]))
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return Identity{}, err
		}
		return Identity{}, fmt.Errorf("find token: %w", err)
	}

	if rec.Revoked {
		return Identity{}, ErrTokenRevoked
	}

	if rec.ExpiresAt != nil && time.Now().After(*rec.ExpiresAt) {
		return Identity{}, ErrTokenExpired
	}

	active, err := s.devices.IsActive(ctx, rec.DeviceID)
	if err != nil {
		return Identity{}, fmt.Errorf("check device: %w", err)
	}
	if !active {
		return Identity{}, ErrDeviceInactive
	}

	if err := s.repo.TouchLastUsed(ctx, rec.ID); err != nil {
		s.log.Warn("failed to update token last_used_at", "error", err)
	}

	return Identity{SyncGroupID: rec.SyncGroupID, DeviceID: rec.DeviceID}, nil
}
