package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipsync/internal/domain/session"
)

const (
	testGroupID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testDeviceID = "7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f"
)

func testIdentity() session.Identity {
	return session.Identity{
		SyncGroupID: testGroupID,
		DeviceID:    testDeviceID,
	}
}

func TestMemoryLimiter_AllowsUnderLimit(t *testing.T) {
	limiter := NewMemory(Rules{DevicePerMinute: 3, GroupPerHour: 100})

	for i := 0; i < 3; i++ {
		decision := limiter.Allow(context.Background(), testIdentity())

		require.True(t, decision.Allowed)
		assert.Equal(t, 2-i, decision.Remaining)
	}
}

func TestMemoryLimiter_RejectsOverDeviceLimit(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemory(Rules{DevicePerMinute: 2, GroupPerHour: 100}).
		WithClock(func() time.Time { return start })

	limiter.Allow(context.Background(), testIdentity())
	limiter.Allow(context.Background(), testIdentity())
	decision := limiter.Allow(context.Background(), testIdentity())

	require.False(t, decision.Allowed)
	assert.Zero(t, decision.Remaining)
	assert.Equal(t, start.Add(time.Minute), decision.ResetAt)
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemory(Rules{DevicePerMinute: 1, GroupPerHour: 100}).
		WithClock(func() time.Time { return now })

	first := limiter.Allow(context.Background(), testIdentity())
	require.True(t, first.Allowed)

	blocked := limiter.Allow(context.Background(), testIdentity())
	require.False(t, blocked.Allowed)

	// Истекшее окно начинается заново, счетчик снова равен единице
	now = now.Add(time.Minute + time.Second)
	fresh := limiter.Allow(context.Background(), testIdentity())

	require.True(t, fresh.Allowed)
	assert.Equal(t, 0, fresh.Remaining)
	assert.Equal(t, now.Add(time.Minute), fresh.ResetAt)
}

func TestMemoryLimiter_GroupWindowSharedAcrossDevices(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemory(Rules{DevicePerMinute: 100, GroupPerHour: 2}).
		WithClock(func() time.Time { return start })

	first := session.Identity{SyncGroupID: testGroupID, DeviceID: testDeviceID}
	second := session.Identity{SyncGroupID: testGroupID, DeviceID: "c3a1f0d2-5b4e-4a6c-8d7f-9e0a1b2c3d4e"}

	require.True(t, limiter.Allow(context.Background(), first).Allowed)
	require.True(t, limiter.Allow(context.Background(), second).Allowed)

	// Каждое устройство в своем минутном окне, но часовое окно группы исчерпано
	decision := limiter.Allow(context.Background(), first)

	require.False(t, decision.Allowed)
	assert.Equal(t, start.Add(time.Hour), decision.ResetAt)
}

func TestMemoryLimiter_RemainingTracksTighterWindow(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemory(Rules{DevicePerMinute: 100, GroupPerHour: 5}).
		WithClock(func() time.Time { return start })

	decision := limiter.Allow(context.Background(), testIdentity())

	require.True(t, decision.Allowed)
	assert.Equal(t, 4, decision.Remaining)
	assert.Equal(t, start.Add(time.Hour), decision.ResetAt)
}

func TestMemoryLimiter_IndependentGroups(t *testing.T) {
	limiter := NewMemory(Rules{DevicePerMinute: 1, GroupPerHour: 100})

	exhausted := testIdentity()
	require.True(t, limiter.Allow(context.Background(), exhausted).Allowed)
	require.False(t, limiter.Allow(context.Background(), exhausted).Allowed)

	other := session.Identity{
		SyncGroupID: "a1b2c3d4-e5f6-4a5b-8c7d-0e1f2a3b4c5d",
		DeviceID:    "d4c3b2a1-f6e5-4b5a-7d8c-5c4b3a2f1e0d",
	}
	decision := limiter.Allow(context.Background(), other)

	assert.True(t, decision.Allowed)
}
