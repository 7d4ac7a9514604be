package item

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/item"
)

type Handler struct {
	service    item.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service item.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pushOp(), h.push)
	huma.Register(api, h.pullOp(), h.pull)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	resp, err := h.service.Push(ctx, input.Body)
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return nil, mapped
		}
		return &pushOutput{
			Body: item.PushResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &pushOutput{Body: *resp}, nil
}

func (h *Handler) pull(ctx context.Context, input *pullInput) (*pullOutput, error) {
	resp, err := h.service.Pull(ctx, input.Body)
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return nil, mapped
		}
		return &pullOutput{
			Body: item.PullResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &pullOutput{Body: *resp}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*deleteOutput, error) {
	resp, err := h.service.Delete(ctx, input.Body)
	if err != nil {
		if mapped := mapError(err); mapped != nil {
			return nil, mapped
		}
		return &deleteOutput{
			Body: item.DeleteResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &deleteOutput{Body: *resp}, nil
}

// mapError переводит доменные ошибки в HTTP-статусы. Остальные ошибки
// уходят в тело ответа со статусом Error.
func mapError(err error) error {
	switch {
	case errors.Is(err, item.ErrNotAuthenticated):
		return huma.Error401Unauthorized("Unauthorized")
	case errors.Is(err, item.ErrBatchTooLarge):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		return nil
	}
}
