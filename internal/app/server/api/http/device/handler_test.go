package device

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clipsync/internal/domain/device"
	"clipsync/internal/domain/group"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req device.RegisterRequest) (*device.RegisterResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.RegisterResponse), args.Error(1)
}

func TestHandler_register(t *testing.T) {
	req := device.RegisterRequest{
		SyncGroupID: "0f8fad5b-d9cb-469f-a165-70867728950e",
		DeviceID:    "7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f",
		DeviceName:  "Home Desktop",
		DeviceType:  "desktop",
	}

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		expiresAt := time.Now().Add(720 * time.Hour)
		svc.On("Register", mock.Anything, req).Return(&device.RegisterResponse{
			Status:    "Ok",
			Token:     "issued-token",
			ExpiresAt: &expiresAt,
			Group:     group.SyncGroup{ID: req.SyncGroupID},
			Device:    device.Device{ID: req.DeviceID, Name: req.DeviceName},
		}, nil)

		input := &registerInput{Body: req}
		resp, err := h.register(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "Ok", resp.Body.Status)
		assert.Equal(t, "issued-token", resp.Body.Token)
		assert.Equal(t, req.DeviceID, resp.Body.Device.ID)
		svc.AssertExpectations(t)
	})

	t.Run("Error_ValidationRejectedWith422", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		wrapped := fmt.Errorf("%w: %s", device.ErrInvalidInput, "device_id must be a valid UUID")
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, wrapped)

		input := &registerInput{Body: device.RegisterRequest{DeviceID: "garbage"}}
		resp, err := h.register(context.Background(), input)

		assert.Nil(t, resp)
		require.Error(t, err)

		var statusErr huma.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 422, statusErr.GetStatus())
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, errors.New("upsert group: database error"))

		input := &registerInput{Body: req}
		resp, err := h.register(context.Background(), input)

		require.Nil(t, err)
		assert.Equal(t, "Error", resp.Body.Status)
		assert.Contains(t, resp.Body.Error, "database error")
	})
}
