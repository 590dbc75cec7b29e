package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/service"
)

type CreatePaymentRequest struct {
	BasketID int64            `json:"basket_id" validate:"required,gt=0"`
	Amount   *decimal.Decimal `json:"amount"`
}

// WebhookRequest: уведомление провайдера; нужен только объект платежа
type WebhookRequest struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id" validate:"required"`
		Status string `json:"status" validate:"required"`
	} `json:"object"`
}

// CreatePaymentHandler обрабатывает POST /api/payments/
func CreatePaymentHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreatePaymentHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		var req CreatePaymentRequest
		if !decode(w, r, logger, &req) {
			return
		}

		payment, err := checkout.CreatePayment(r.Context(), userID, req.BasketID, req.Amount)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, payment)
	}
}

// GetPaymentHandler обрабатывает GET /api/payments/{id}
func GetPaymentHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetPaymentHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		paymentID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}

		payment, err := checkout.GetPayment(r.Context(), userID, paymentID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, payment)
	}
}

// SyncPaymentHandler обрабатывает POST /api/payments/{id}/sync: статус берется у провайдера
func SyncPaymentHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SyncPaymentHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := userFromRequest(w, r, logger)
		if !ok {
			return
		}
		paymentID, ok := idParam(w, r, logger, "id")
		if !ok {
			return
		}

		payment, err := checkout.SyncPayment(r.Context(), userID, paymentID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, payment)
	}
}

// WebhookHandler обрабатывает POST /webhooks/.
// 200 отдается и на применение, и на повтор: провайдер перестает слать уведомление.
func WebhookHandler(log *slog.Logger, checkout service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.WebhookHandler"
		logger := log.With(slog.String("op", op))

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeMessage(w, logger, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req WebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid webhook body", slog.Any("error", err))
			writeMessage(w, logger, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := validate.Struct(&req); err != nil {
			logger.Error("invalid webhook payload", slog.Any("error", err))
			writeMessage(w, logger, http.StatusBadRequest, "object.id and object.status are required")
			return
		}

		outcome, err := checkout.HandleWebhook(r.Context(), req.Object.ID, req.Object.Status)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		logger.Info("webhook processed",
			slog.String("event", req.Event),
			slog.String("externalID", req.Object.ID),
			slog.String("outcome", string(outcome)),
		)
		writeJSON(w, logger, http.StatusOK, map[string]bool{"success": true})
	}
}
