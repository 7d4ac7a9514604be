package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/group"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, d Device) (Device, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(Device), args.Error(1)
}

func (m *MockRepository) Find(ctx context.Context, id string) (Device, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Device), args.Error(1)
}

func (m *MockRepository) IsActive(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGroupRegistry is a mock implementation of the GroupRegistry interface
type MockGroupRegistry struct {
	mock.Mock
}

func (m *MockGroupRegistry) Upsert(ctx context.Context, id string) (group.SyncGroup, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(group.SyncGroup), args.Error(1)
}

// MockTokenIssuer is a mock implementation of the TokenIssuer interface
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(ctx context.Context, groupID, deviceID string) (string, *time.Time, error) {
	args := m.Called(ctx, groupID, deviceID)
	var expiresAt *time.Time
	if args.Get(1) != nil {
		expiresAt = args.Get(1).(*time.Time)
	}
	return args.String(0), expiresAt, args.Error(2)
}

const (
	testGroupID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testDeviceID = "7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f"
)

func validRequest() RegisterRequest {
	return RegisterRequest{
		SyncGroupID: testGroupID,
		DeviceID:    testDeviceID,
		DeviceName:  "Home Desktop",
		DeviceType:  "desktop",
	}
}

func newTestService(repo *MockRepository, groups *MockGroupRegistry, tokens *MockTokenIssuer) *Service {
	return NewService(repo, groups, tokens, NewRegisterValidator(), slog.Default())
}

func TestService_Register(t *testing.T) {
	mockRepo := new(MockRepository)
	groups := new(MockGroupRegistry)
	tokens := new(MockTokenIssuer)
	service := newTestService(mockRepo, groups, tokens)

	grp := group.SyncGroup{ID: testGroupID, CreatedAt: time.Now()}
	dev := Device{
		ID:          testDeviceID,
		SyncGroupID: testGroupID,
		Name:        "Home Desktop",
		Type:        TypeDesktop,
		Active:      true,
	}
	expiresAt := time.Now().Add(720 * time.Hour)

	groups.On("Upsert", mock.Anything, testGroupID).Return(grp, nil)
	mockRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(d Device) bool {
		return d.ID == testDeviceID && d.SyncGroupID == testGroupID && d.Active
	})).Return(dev, nil)
	tokens.On("Issue", mock.Anything, testGroupID, testDeviceID).Return("tok_abc", &expiresAt, nil)

	resp, err := service.Register(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "Ok", resp.Status)
	assert.Equal(t, "tok_abc", resp.Token)
	assert.Equal(t, &expiresAt, resp.ExpiresAt)
	assert.Equal(t, grp, resp.Group)
	assert.Equal(t, dev, resp.Device)

	mockRepo.AssertExpectations(t)
	groups.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestService_Register_SanitizesName(t *testing.T) {
	mockRepo := new(MockRepository)
	groups := new(MockGroupRegistry)
	tokens := new(MockTokenIssuer)
	service := newTestService(mockRepo, groups, tokens)

	groups.On("Upsert", mock.Anything, testGroupID).Return(group.SyncGroup{ID: testGroupID}, nil)
	// Имя сохраняется уже очищенным от управляющих символов и пробелов
	mockRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(d Device) bool {
		return d.Name == "Home Desktop"
	})).Return(Device{ID: testDeviceID, Name: "Home Desktop"}, nil)
	tokens.On("Issue", mock.Anything, testGroupID, testDeviceID).Return("tok_abc", nil, nil)

	req := validRequest()
	req.DeviceName = "  Home\x00 Desktop\n "

	_, err := service.Register(context.Background(), req)
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestService_Register_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
	}{
		{
			name:   "bad group id",
			mutate: func(r *RegisterRequest) { r.SyncGroupID = "garbage" },
		},
		{
			name:   "bad device id",
			mutate: func(r *RegisterRequest) { r.DeviceID = "garbage" },
		},
		{
			name:   "empty name",
			mutate: func(r *RegisterRequest) { r.DeviceName = "" },
		},
		{
			name:   "bad device type",
			mutate: func(r *RegisterRequest) { r.DeviceType = "smartwatch" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			groups := new(MockGroupRegistry)
			tokens := new(MockTokenIssuer)
			service := newTestService(mockRepo, groups, tokens)

			req := validRequest()
			tt.mutate(&req)

			_, err := service.Register(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)

			// До хранилища невалидный запрос не доходит
			groups.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
			mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
			tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Register_GroupUpsertFails(t *testing.T) {
	mockRepo := new(MockRepository)
	groups := new(MockGroupRegistry)
	tokens := new(MockTokenIssuer)
	service := newTestService(mockRepo, groups, tokens)

	groups.On("Upsert", mock.Anything, testGroupID).Return(group.SyncGroup{}, errors.New("database error"))

	_, err := service.Register(context.Background(), validRequest())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestService_Register_DeviceUpsertFails(t *testing.T) {
	mockRepo := new(MockRepository)
	groups := new(MockGroupRegistry)
	tokens := new(MockTokenIssuer)
	service := newTestService(mockRepo, groups, tokens)

	groups.On("Upsert", mock.Anything, testGroupID).Return(group.SyncGroup{ID: testGroupID}, nil)
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("device.Device")).Return(Device{}, errors.New("database error"))

	_, err := service.Register(context.Background(), validRequest())
	assert.Error(t, err)

	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Register_TokenIssueFails(t *testing.T) {
	mockRepo := new(MockRepository)
	groups := new(MockGroupRegistry)
	tokens := new(MockTokenIssuer)
	service := newTestService(mockRepo, groups, tokens)

	groups.On("Upsert", mock.Anything, testGroupID).Return(group.SyncGroup{ID: testGroupID}, nil)
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("device.Device")).Return(Device{ID: testDeviceID}, nil)
	tokens.On("Issue", mock.Anything, testGroupID, testDeviceID).Return("", nil, errors.New("database error"))

	_, err := service.Register(context.Background(), validRequest())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "issue token")
}
