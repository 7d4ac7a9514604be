package item

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID: "items-push",
		Method:      http.MethodPost,
		Path:        "/api/items/push",
		Summary:     "Загрузить пакет зашифрованных записей",
		Description: "Принимает до 100 записей за запрос. Конфликты разрешаются по правилу last-write-wins, проигравшие записи перечисляются в ответе.",
		Tags:        []string{"items"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pullOp() huma.Operation {
	return huma.Operation{
		OperationID: "items-pull",
		Method:      http.MethodPost,
		Path:        "/api/items/pull",
		Summary:     "Получить изменения группы",
		Description: "Возвращает записи с updated_at позже отметки since, включая надгробия удаленных. Страницы листаются по has_more.",
		Tags:        []string{"items"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "items-delete",
		Method:      http.MethodPost,
		Path:        "/api/items/delete",
		Summary:     "Мягко удалить записи",
		Description: "Ставит отметку удаления и продвигает логические часы, чтобы надгробие доехало до остальных устройств. Повтор и неизвестные идентификаторы не считаются ошибкой.",
		Tags:        []string{"items"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
