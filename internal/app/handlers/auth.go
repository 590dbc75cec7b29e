package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/supershop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/supershop/internal/service"
)

// AuthRequest представляет структуру запроса для входа с тегами валидации
type AuthRequest struct {
	Phone    string `json:"phone" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=8"`
}

type SendCodeRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type RegisterRequest struct {
	Phone    string `json:"phone" validate:"required,e164"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"code" validate:"required,len=4,numeric"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Token string `json:"token"`
}

// setTokenCookie дублирует токен в HttpOnly cookie для браузерного клиента
func setTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     jwtmiddleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SendCodeHandler обрабатывает POST /api/auth/code
func SendCodeHandler(log *slog.Logger, verifier service.VerificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SendCodeHandler"
		logger := log.With(slog.String("op", op))

		var req SendCodeRequest
		if !decode(w, r, logger, &req) {
			return
		}

		if err := verifier.SendCode(r.Context(), req.Phone); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"message": "code sent"})
	}
}

// RegisterHandler обрабатывает POST /api/auth/register
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface, tokenTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if !decode(w, r, logger, &req) {
			return
		}

		token, err := authService.Register(r.Context(), req.Phone, req.Name, req.Password, req.Code)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		setTokenCookie(w, token, tokenTTL)
		writeJSON(w, logger, http.StatusCreated, AuthResponse{Token: token})
	}
}

// AuthHandler – HTTP-обработчик входа по телефону и паролю
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface, tokenTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if !decode(w, r, logger, &req) {
			return
		}

		// Вызов бизнес-логики для аутентификации
		token, err := authService.Login(r.Context(), req.Phone, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		setTokenCookie(w, token, tokenTTL)
		writeJSON(w, logger, http.StatusOK, AuthResponse{Token: token})
	}
}
