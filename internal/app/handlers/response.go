package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linemk/supershop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/supershop/internal/service"
)

var validate = validator.New()

// ErrorResponse: тело ответа с ошибкой
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeMessage(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: true, Message: msg})
}

// statusFor сопоставляет ошибки сервисов и HTTP-статусы
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrExternalProvider):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError пишет ошибку сервиса; текст внутренних ошибок наружу не отдается
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("internal error", slog.Any("error", err))
		writeMessage(w, log, status, "internal server error")
		return
	}
	log.Warn("request failed", slog.Int("status", status), slog.Any("error", err))
	writeMessage(w, log, status, err.Error())
}

// decode читает JSON и проверяет теги validate
func decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error("invalid request: decoding error", slog.Any("error", err))
		writeMessage(w, log, http.StatusBadRequest, "invalid request")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		log.Error("invalid request: validation error", slog.Any("error", err))
		writeMessage(w, log, http.StatusBadRequest, "validation error: "+err.Error())
		return false
	}
	return true
}

// userFromRequest извлекает userID, установленный JWT-middleware
func userFromRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	userID, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		log.Error("userID not found in context")
		writeMessage(w, log, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}

func idParam(w http.ResponseWriter, r *http.Request, log *slog.Logger, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		log.Error("invalid path parameter", slog.String("param", name))
		writeMessage(w, log, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
