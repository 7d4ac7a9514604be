package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clipsync/internal/domain/item"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Push(ctx context.Context, req item.PushRequest) (*item.PushResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.PushResponse), args.Error(1)
}

func (m *MockService) Pull(ctx context.Context, req item.PullRequest) (*item.PullResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.PullResponse), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, req item.DeleteRequest) (*item.DeleteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.DeleteResponse), args.Error(1)
}

func (m *MockService) Status(ctx context.Context) (*item.StatusResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.StatusResponse), args.Error(1)
}

func TestHandler_status(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		lastActivity := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		svc.On("Status", mock.Anything).Return(&item.StatusResponse{
			Status:        "Ok",
			ActiveDevices: 2,
			ItemCount:     40,
			TotalSize:     4096,
			LastActivity:  lastActivity,
			Devices: []item.DeviceSummary{
				{ID: "7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f", Name: "Home Desktop", Active: true},
				{ID: "c3a1f0d2-5b4e-4a6c-8d7f-9e0a1b2c3d4e", Name: "Phone", Active: true},
			},
		}, nil)

		resp, err := h.status(context.Background(), &statusInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Body.ActiveDevices)
		assert.Equal(t, int64(40), resp.Body.ItemCount)
		assert.Len(t, resp.Body.Devices, 2)
	})

	t.Run("Error_NotAuthenticated", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		svc.On("Status", mock.Anything).Return(nil, item.ErrNotAuthenticated)

		resp, err := h.status(context.Background(), &statusInput{})

		assert.Nil(t, resp)
		require.Error(t, err)

		var statusErr huma.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 401, statusErr.GetStatus())
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, nil, nil)

		svc.On("Status", mock.Anything).Return(nil, errors.New("count items: database error"))

		resp, err := h.status(context.Background(), &statusInput{})

		require.Nil(t, err)
		assert.Equal(t, "Error", resp.Body.Status)
	})
}
