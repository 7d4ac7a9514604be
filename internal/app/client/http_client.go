package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/exp/slog"

	"clipsync/internal/domain/device"
	"clipsync/internal/domain/item"
)

const statusError = "Error"

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

// NewHTTPClient создает клиент реле. Адрес берется из конфигурации
// сопряжения или из конфигурации клиента и содержит схему и хост.
func NewHTTPClient(baseURL string, log *slog.Logger) (*httpClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("некорректный адрес реле: %q", baseURL)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  false,
			DisableKeepAlives:   false,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		log:       log,
		baseURL:   u.Scheme + "://" + u.Host,
		userAgent: "Clipsync-Client/1.0",
	}, nil
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность реле
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("реле недоступно: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("реле вернуло статус: %d", resp.StatusCode)
	}

	return nil
}

// Register регистрирует устройство в группе синхронизации. Ответ
// содержит свежий токен, предыдущий токен устройства отзывается.
func (h *httpClient) Register(ctx context.Context, req device.RegisterRequest) (*device.RegisterResponse, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/devices/register", req)
	if err != nil {
		return nil, err
	}

	var out device.RegisterResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	if out.Status == statusError {
		return nil, fmt.Errorf("ошибка регистрации: %s", out.Error)
	}

	return &out, nil
}

// Push загружает пакет зашифрованных записей
func (h *httpClient) Push(ctx context.Context, req item.PushRequest) (*item.PushResponse, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/items/push", req)
	if err != nil {
		return nil, err
	}

	var out item.PushResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	if out.Status == statusError {
		return nil, fmt.Errorf("ошибка отправки записей: %s", out.Error)
	}

	return &out, nil
}

// Pull запрашивает изменения после отметки since
func (h *httpClient) Pull(ctx context.Context, req item.PullRequest) (*item.PullResponse, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/items/pull", req)
	if err != nil {
		return nil, err
	}

	var out item.PullResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	if out.Status == statusError {
		return nil, fmt.Errorf("ошибка получения изменений: %s", out.Error)
	}

	return &out, nil
}

// Delete помечает записи удаленными на реле
func (h *httpClient) Delete(ctx context.Context, req item.DeleteRequest) (*item.DeleteResponse, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/items/delete", req)
	if err != nil {
		return nil, err
	}

	var out item.DeleteResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	if out.Status == statusError {
		return nil, fmt.Errorf("ошибка удаления записей: %s", out.Error)
	}

	return &out, nil
}

// Status возвращает сводку по группе синхронизации
func (h *httpClient) Status(ctx context.Context) (*item.StatusResponse, error) {
	resp, err := h.doRequest(ctx, "GET", "/api/status", nil)
	if err != nil {
		return nil, err
	}

	var out item.StatusResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	if out.Status == statusError {
		return nil, fmt.Errorf("ошибка получения сводки: %s", out.Error)
	}

	return &out, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	// Тело не логируется: в ответе регистрации содержится токен
	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"size", len(body),
	)

	if resp.StatusCode >= 400 {
		return h.statusError(resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}

// statusError разбирает тело ошибки. Middleware реле отвечают полем
// error с машинным кодом, сам huma отдает problem-json с полем detail.
func (h *httpClient) statusError(status int, body []byte) error {
	var errResp struct {
		Error  string `json:"error"`
		Code   string `json:"code"`
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}

	message := fmt.Sprintf("статус %d", status)
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Error != "":
			message = errResp.Error
		case errResp.Detail != "":
			message = errResp.Detail
		case errResp.Title != "":
			message = errResp.Title
		}
		if errResp.Code != "" {
			message += " (" + errResp.Code + ")"
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	default:
		return fmt.Errorf("ошибка сервера: %s", message)
	}
}
