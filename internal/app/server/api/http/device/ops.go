package device

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID: "devices-register",
		Method:      http.MethodPost,
		Path:        "/api/devices/register",
		Summary:     "Регистрация устройства в группе",
		Description: "Идемпотентно создает группу, регистрирует устройство и выпускает новый токен. Повторная регистрация безопасна и ротирует токен.",
		Tags:        []string{"devices"},
		Middlewares: h.middleware,
	}
}
