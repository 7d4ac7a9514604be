package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_SaveAndGet(t *testing.T) {
	storage := NewMemoryStorage()
	stored := testStoredClip("11110000-0000-4000-8000-000000000001", ownDeviceID, "first", 1, 100)

	require.NoError(t, storage.SaveClip(stored))
	assert.ErrorIs(t, storage.SaveClip(stored), ErrClipExists)

	got, err := storage.GetClip(stored.Clip.SyncID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Clip.Title)

	// Хранилище отдает копию, правки снаружи не протекают внутрь
	got.Clip.Title = "mutated"
	got.Clip.Contents[0].Data[0] = 'X'
	again, err := storage.GetClip(stored.Clip.SyncID)
	require.NoError(t, err)
	assert.Equal(t, "first", again.Clip.Title)
	assert.Equal(t, byte('f'), again.Clip.Contents[0].Data[0])

	_, err = storage.GetClip("missing")
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestMemoryStorage_UpdateClip(t *testing.T) {
	storage := NewMemoryStorage()
	stored := testStoredClip("22220000-0000-4000-8000-000000000001", ownDeviceID, "before", 1, 100)

	assert.ErrorIs(t, storage.UpdateClip(stored), ErrClipNotFound)

	require.NoError(t, storage.SaveClip(stored))
	stored.Clip.Title = "after"
	stored.UpdatedAt = 200
	require.NoError(t, storage.UpdateClip(stored))

	got, err := storage.GetClip(stored.Clip.SyncID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Clip.Title)
	assert.Equal(t, int64(200), got.UpdatedAt)
}

func TestMemoryStorage_ListClips(t *testing.T) {
	storage := NewMemoryStorage()
	older := testStoredClip("33330000-0000-4000-8000-000000000001", ownDeviceID, "older", 1, 100)
	newer := testStoredClip("33330000-0000-4000-8000-000000000002", ownDeviceID, "newer", 1, 300)
	gone := testStoredClip("33330000-0000-4000-8000-000000000003", ownDeviceID, "gone", 1, 200)

	require.NoError(t, storage.SaveClip(older))
	require.NoError(t, storage.SaveClip(newer))
	require.NoError(t, storage.SaveClip(gone))
	require.NoError(t, storage.MarkDeleted(gone.Clip.SyncID, 400))

	clips, err := storage.ListClips(false)
	require.NoError(t, err)
	require.Len(t, clips, 2)
	// Свежие сверху
	assert.Equal(t, "newer", clips[0].Clip.Title)
	assert.Equal(t, "older", clips[1].Clip.Title)

	all, err := storage.ListClips(true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := storage.CountClips()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryStorage_ListModifiedSince(t *testing.T) {
	storage := NewMemoryStorage()
	old := testStoredClip("44440000-0000-4000-8000-000000000001", ownDeviceID, "old", 1, 100)
	fresh := testStoredClip("44440000-0000-4000-8000-000000000002", ownDeviceID, "fresh", 1, 300)
	removed := testStoredClip("44440000-0000-4000-8000-000000000003", ownDeviceID, "removed", 1, 150)

	require.NoError(t, storage.SaveClip(old))
	require.NoError(t, storage.SaveClip(fresh))
	require.NoError(t, storage.SaveClip(removed))
	require.NoError(t, storage.MarkDeleted(removed.Clip.SyncID, 250))

	modified, err := storage.ListModifiedSince(100)
	require.NoError(t, err)
	require.Len(t, modified, 2)
	// Надгробия входят в выборку, порядок по возрастанию отметки
	assert.Equal(t, "removed", modified[0].Clip.Title)
	assert.True(t, modified[0].Deleted)
	assert.Equal(t, "fresh", modified[1].Clip.Title)
}

func TestMemoryStorage_MarkDeleted(t *testing.T) {
	storage := NewMemoryStorage()
	stored := testStoredClip("55550000-0000-4000-8000-000000000001", ownDeviceID, "bye", 1, 100)
	require.NoError(t, storage.SaveClip(stored))

	require.NoError(t, storage.MarkDeleted(stored.Clip.SyncID, 200))
	require.NoError(t, storage.MarkDeleted(stored.Clip.SyncID, 300))
	require.NoError(t, storage.MarkDeleted("missing", 400))

	got, err := storage.GetClip(stored.Clip.SyncID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
}

func TestMemoryStorage_FindByDigest(t *testing.T) {
	storage := NewMemoryStorage()
	alive := testStoredClip("66660000-0000-4000-8000-000000000001", ownDeviceID, "alive", 1, 100)
	buried := testStoredClip("66660000-0000-4000-8000-000000000002", ownDeviceID, "buried", 1, 100)

	require.NoError(t, storage.SaveClip(alive))
	require.NoError(t, storage.SaveClip(buried))
	require.NoError(t, storage.MarkDeleted(buried.Clip.SyncID, 200))

	found, err := storage.FindByDigest(alive.Digest)
	require.NoError(t, err)
	assert.Equal(t, alive.Clip.SyncID, found.Clip.SyncID)

	// Удаленные и пустые дайджесты не участвуют в поиске
	_, err = storage.FindByDigest(buried.Digest)
	assert.ErrorIs(t, err, ErrClipNotFound)
	_, err = storage.FindByDigest("")
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestMemoryStorage_State(t *testing.T) {
	storage := NewMemoryStorage()

	value, err := storage.GetState(stateHighWaterMark)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, storage.SetState(stateHighWaterMark, "1234"))
	require.NoError(t, storage.SetState(stateHighWaterMark, "5678"))

	value, err = storage.GetState(stateHighWaterMark)
	require.NoError(t, err)
	assert.Equal(t, "5678", value)
}
