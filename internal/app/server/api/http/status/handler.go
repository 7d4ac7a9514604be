package status

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
	huma.Register(api, h.statusOp(), h.status)
}

func (h *Handler) status(ctx context.Context, _ *statusInput) (*statusOutput, error) {
	resp, err := h.service.Status(ctx)
	if err != nil {
		if errors.Is(err, item.ErrNotAuthenticated) {
			return nil, huma.Error401Unauthorized("Unauthorized")
		}
		return &statusOutput{
			Body: item.StatusResponse{Status: "Error", Error: err.Error()},
		}, nil
	}

	return &statusOutput{Body: *resp}, nil
}
