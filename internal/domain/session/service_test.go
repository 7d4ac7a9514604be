package session

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, t Token) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) FindByHash(ctx context.Context, tokenHash string) (Token, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(Token), args.Error(1)
}

func (m *MockRepository) RevokeAllForDevice(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func (m *MockRepository) TouchLastUsed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDeviceChecker is a mock implementation of the DeviceChecker interface
type MockDeviceChecker struct {
	mock.Mock
}

func (m *MockDeviceChecker) IsActive(ctx context.Context, deviceID string) (bool, error) {
	args := m.Called(ctx, deviceID)
	return args.Bool(0), args.Error(1)
}

const (
	testGroupID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testDeviceID = "7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f"
)

func hashOf(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func TestService_Issue(t *testing.T) {
	mockRepo := new(MockRepository)
	devices := new(MockDeviceChecker)
	logger := slog.Default()
	service := NewService(mockRepo, devices, DefaultTTL, logger)

	var saved Token
	mockRepo.On("RevokeAllForDevice", mock.Anything, testDeviceID).Return(nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(tok Token) bool {
		saved = tok
		return tok.SyncGroupID == testGroupID && tok.DeviceID == testDeviceID
	})).Return(nil)

	token, expiresAt, err := service.Issue(context.Background(), testGroupID, testDeviceID)
	require.NoError(t, err)

	// Токен отдается в base64url, в хранилище попадает только sha256-хэш
	raw, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, hashOf(token), saved.TokenHash)

	require.NotNil(t, expiresAt)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), *expiresAt, time.Minute)

	mockRepo.AssertExpectations(t)
}

func TestService_Issue_NoExpiry(t *testing.T) {
	mockRepo := new(MockRepository)
	devices := new(MockDeviceChecker)
	logger := slog.Default()
	service := NewService(mockRepo, devices, 0, logger)

	mockRepo.On("RevokeAllForDevice", mock.Anything, testDeviceID).Return(nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("session.Token")).Return(nil)

	_, expiresAt, err := service.Issue(context.Background(), testGroupID, testDeviceID)
	require.NoError(t, err)
	assert.Nil(t, expiresAt)

	mockRepo.AssertExpectations(t)
}

func TestService_Issue_RevokeFails(t *testing.T) {
	mockRepo := new(MockRepository)
	devices := new(MockDeviceChecker)
	logger := slog.Default()
	service := NewService(mockRepo, devices, DefaultTTL, logger)

	mockRepo.On("RevokeAllForDevice", mock.Anything, testDeviceID).Return(errors.New("database error"))

	_, _, err := service.Issue(context.Background(), testGroupID, testDeviceID)
	assert.Error(t, err)

	mockRepo.AssertExpectations(t)
}

func TestService_Validate(t *testing.T) {
	token := base64.URLEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name    string
		stored  Token
		findErr error
		active  bool
		wantErr error
	}{
		{
			name: "valid token",
			stored: Token{
				ID:          "t1",
				SyncGroupID: testGroupID,
				DeviceID:    testDeviceID,
				ExpiresAt:   &future,
			},
			active: true,
		},
		{
			name:    "unknown token",
			findErr: ErrTokenNotFound,
			wantErr: ErrTokenNotFound,
		},
		{
			name: "revoked token",
			stored: Token{
				ID:          "t1",
				SyncGroupID: testGroupID,
				DeviceID:    testDeviceID,
				Revoked:     true,
			},
			wantErr: ErrTokenRevoked,
		},
		{
			name: "expired token",
			stored: Token{
				ID:          "t1",
				SyncGroupID: testGroupID,
				DeviceID:    testDeviceID,
				ExpiresAt:   &past,
			},
			wantErr: ErrTokenExpired,
		},
		{
			name: "token without expiry never expires",
			stored: Token{
				ID:          "t1",
				SyncGroupID: testGroupID,
				DeviceID:    testDeviceID,
			},
			active: true,
		},
		{
			name: "inactive device",
			stored: Token{
				ID:          "t1",
				SyncGroupID: testGroupID,
				DeviceID:    testDeviceID,
			},
			active:  false,
			wantErr: ErrDeviceInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			devices := new(MockDeviceChecker)
			logger := slog.Default()
			service := NewService(mockRepo, devices, DefaultTTL, logger)

			mockRepo.On("FindByHash", mock.Anything, hashOf(token)).Return(tt.stored, tt.findErr)
			devices.On("IsActive", mock.Anything, testDeviceID).Return(tt.active, nil).Maybe()
			mockRepo.On("TouchLastUsed", mock.Anything, "t1").Return(nil).Maybe()

			ident, err := service.Validate(context.Background(), token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testGroupID, ident.SyncGroupID)
			assert.Equal(t, testDeviceID, ident.DeviceID)
			mockRepo.AssertCalled(t, "TouchLastUsed", mock.Anything, "t1")
		})
	}
}

func TestService_Validate_TouchFailureIsNotFatal(t *testing.T) {
	token := base64.URLEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

	mockRepo := new(MockRepository)
	devices := new(MockDeviceChecker)
	logger := slog.Default()
	service := NewService(mockRepo, devices, 0, logger)

	stored := Token{ID: "t1", SyncGroupID: testGroupID, DeviceID: testDeviceID}
	mockRepo.On("FindByHash", mock.Anything, hashOf(token)).Return(stored, nil)
	devices.On("IsActive", mock.Anything, testDeviceID).Return(true, nil)
	mockRepo.On("TouchLastUsed", mock.Anything, "t1").Return(errors.New("database error"))

	ident, err := service.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, testDeviceID, ident.DeviceID)

	mockRepo.AssertExpectations(t)
}
