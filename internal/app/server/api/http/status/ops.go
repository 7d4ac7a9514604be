package status

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) statusOp() huma.Operation {
	return huma.Operation{
		OperationID: "status-get",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Сводка по группе синхронизации",
		Description: "Возвращает количество записей, суммарный размер и реестр устройств группы вызывающего устройства. Ничего не изменяет.",
		Tags:        []string{"status"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
