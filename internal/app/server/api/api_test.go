package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/config"
	"clipsync/internal/app/server/ratelimit"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/item"
	"clipsync/internal/infrastructure/storage/memory"
)

const (
	testGroupID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testDeviceID = "7b0d3b50-9a5c-4c6d-8f6e-2a1b3c4d5e6f"
	testItemID   = "9a2e6d7c-4b3a-4f2e-9d1c-8b7a6f5e4d3c"
)

func newTestMux(t *testing.T) *chi.Mux {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Token.TTLHours = 1

	limiter := ratelimit.NewMemory(ratelimit.Rules{DevicePerMinute: 1000, GroupPerHour: 10000})

	return New(memory.New(), limiter, cfg, log)
}

// doJSON гоняет запрос через весь стек: chi, huma, middleware, хендлер
func doJSON(t *testing.T, mux *chi.Mux, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func registerDevice(t *testing.T, mux *chi.Mux) string {
	t.Helper()

	rec := doJSON(t, mux, http.MethodPost, "/api/devices/register", "", device.RegisterRequest{
		SyncGroupID: testGroupID,
		DeviceID:    testDeviceID,
		DeviceName:  "Home Desktop",
		DeviceType:  "desktop",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp device.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Ok", resp.Status)
	require.NotEmpty(t, resp.Token)

	return resp.Token
}

func TestNew(t *testing.T) {
	assert.NotNil(t, newTestMux(t))
}

// TestAPI_SyncLifecycle проводит одну запись через полный жизненный цикл:
// регистрация устройства, загрузка, конфликт, обновление, удаление,
// надгробие в выдаче.
func TestAPI_SyncLifecycle(t *testing.T) {
	mux := newTestMux(t)
	token := registerDevice(t, mux)

	ciphertext := base64.StdEncoding.EncodeToString([]byte("sealed payload"))
	nonce := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x24}, 12))
	digest := strings.Repeat("a", 64)

	push := func(updatedAt int64) item.PushResponse {
		rec := doJSON(t, mux, http.MethodPost, "/api/items/push", token, item.PushRequest{
			Items: []item.SyncItem{{
				ID:         testItemID,
				Ciphertext: ciphertext,
				Nonce:      nonce,
				UpdatedAt:  updatedAt,
				Digest:     digest,
				Size:       14,
			}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

		var resp item.PushResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Ok", resp.Status)
		return resp
	}

	pull := func(since int64) item.PullResponse {
		rec := doJSON(t, mux, http.MethodPost, "/api/items/pull", token, item.PullRequest{
			Since: since,
			Limit: 100,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp item.PullResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Ok", resp.Status)
		return resp
	}

	first := push(100)
	assert.Equal(t, 1, first.Accepted)
	assert.Zero(t, first.Rejected)
	assert.Positive(t, first.ServerTime)

	got := pull(0)
	require.Len(t, got.Items, 1)
	assert.False(t, got.HasMore)
	assert.Equal(t, testItemID, got.Items[0].ID)
	assert.Equal(t, testDeviceID, got.Items[0].DeviceID)
	assert.Equal(t, ciphertext, got.Items[0].Ciphertext)
	assert.Equal(t, nonce, got.Items[0].Nonce)
	assert.False(t, got.Items[0].Deleted)

	stale := push(50)
	assert.Zero(t, stale.Accepted)
	assert.Equal(t, 1, stale.Rejected)
	assert.Equal(t, []string{testItemID}, stale.Conflicts)

	newer := push(200)
	assert.Equal(t, 1, newer.Accepted)
	assert.Empty(t, newer.Conflicts)

	del := doJSON(t, mux, http.MethodPost, "/api/items/delete", token, item.DeleteRequest{
		IDs: []string{testItemID},
	})
	require.Equal(t, http.StatusOK, del.Code)

	var delResp item.DeleteResponse
	require.NoError(t, json.Unmarshal(del.Body.Bytes(), &delResp))
	assert.Equal(t, int64(1), delResp.Deleted)

	// повторное удаление идемпотентно
	again := doJSON(t, mux, http.MethodPost, "/api/items/delete", token, item.DeleteRequest{
		IDs: []string{testItemID},
	})
	require.Equal(t, http.StatusOK, again.Code)
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &delResp))
	assert.Zero(t, delResp.Deleted)

	status := doJSON(t, mux, http.MethodGet, "/api/status", token, nil)
	require.Equal(t, http.StatusOK, status.Code)

	var statusResp item.StatusResponse
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &statusResp))
	assert.Equal(t, "Ok", statusResp.Status)
	assert.Zero(t, statusResp.ItemCount)
	assert.Equal(t, 1, statusResp.ActiveDevices)
	require.Len(t, statusResp.Devices, 1)
	assert.Equal(t, testDeviceID, statusResp.Devices[0].ID)

	// надгробие остается в выдаче, чтобы удаление доехало до устройств
	tomb := pull(0)
	require.Len(t, tomb.Items, 1)
	assert.True(t, tomb.Items[0].Deleted)
	assert.Greater(t, tomb.Items[0].UpdatedAt, int64(200))
}

func TestAPI_AuthRejections(t *testing.T) {
	mux := newTestMux(t)
	registerDevice(t, mux)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "MissingToken", header: "", code: "missing_token"},
		{name: "MalformedHeader", header: "Basic abc", code: "malformed_token"},
		{name: "UnknownToken", header: "Bearer bm90LWEtcmVhbC10b2tlbg", code: "unknown_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

// TestAPI_RateLimit проверяет отказ 429 на полном стеке с лимитом в
// один запрос на устройство.
func TestAPI_RateLimit(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Token.TTLHours = 1

	limiter := ratelimit.NewMemory(ratelimit.Rules{DevicePerMinute: 1, GroupPerHour: 10})
	mux := New(memory.New(), limiter, cfg, log)

	token := registerDevice(t, mux)

	ok := doJSON(t, mux, http.MethodGet, "/api/status", token, nil)
	require.Equal(t, http.StatusOK, ok.Code)

	denied := doJSON(t, mux, http.MethodGet, "/api/status", token, nil)
	require.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.NotEmpty(t, denied.Header().Get("X-RateLimit-Reset"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(denied.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body["code"])
}
