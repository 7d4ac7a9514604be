package device

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"clipsync/internal/domain/group"
)

// Servicer интерфейс сервиса регистрации устройств
type Servicer interface {
	// Register идемпотентно регистрирует устройство в группе и выпускает
	// новый токен. Повторная регистрация безопасна и ротирует токен.
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// GroupRegistry идемпотентно заводит группу при регистрации
type GroupRegistry interface {
	Upsert(ctx context.Context, id string) (group.SyncGroup, error)
}

// TokenIssuer отзывает прежние токены устройства и выпускает новый
type TokenIssuer interface {
	Issue(ctx context.Context, groupID, deviceID string) (string, *time.Time, error)
}

// Service реализация сервиса регистрации
type Service struct {
	repo      Repository
	groups    GroupRegistry
	tokens    TokenIssuer
	validator Validator
	log       *slog.Logger
}

// NewService создает новый сервис регистрации устройств
func NewService(repo Repository, groups GroupRegistry, tokens TokenIssuer, validator Validator, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		groups:    groups,
		tokens:    tokens,
		validator: validator,
		log:       log,
	}
}

// Register идемпотентно регистрирует устройство в группе и выпускает новый токен
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := s.validator.ValidateRegister(req); err != nil {
		s.log.Debug("validation failed", "device_id", req.DeviceID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// Группа создается при первой регистрации любого её устройства
	grp, err := s.groups.Upsert(ctx, req.SyncGroupID)
	if err != nil {
		return nil, fmt.Errorf("upsert group: %w", err)
	}

	dev, err := s.repo.Upsert(ctx, Device{
		ID:          req.DeviceID,
		SyncGroupID: req.SyncGroupID,
		Name:        s.validator.SanitizeName(req.DeviceName),
		Type:        DeviceType(req.DeviceType),
		Active:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert device: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(ctx, req.SyncGroupID, req.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info("device registered",
		slog.String("sync_group_id", req.SyncGroupID),
		slog.String("device_id", req.DeviceID),
		slog.String("device_type", req.DeviceType),
	)

	return &RegisterResponse{
		Status:    "Ok",
		Token:     token,
		ExpiresAt: expiresAt,
		Group:     grp,
		Device:    dev,
	}, nil
}
