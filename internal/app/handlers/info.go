package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/supershop/internal/service"
)

// InfoHandler обрабатывает запрос GET /api/info.
// Он извлекает идентификатор пользователя из контекста (установленный JWT‑middleware),
// затем вызывает InfoService: профиль, заказы со строками и сводка по статусам
func InfoHandler(log *slog.Logger, infoService service.InfoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.InfoHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}

		info, err := infoService.GetInfo(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, info)
	}
}
