package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/lib/metrics"
	"github.com/linemk/supershop/internal/storage"
)

// PaymentProvider: внешний платежный провайдер
type PaymentProvider interface {
	Create(ctx context.Context, amount decimal.Decimal, description string) (*models.PaymentSession, error)
	FindOne(ctx context.Context, externalID string) (*models.PaymentSession, error)
}

// WebhookOutcome: чем закончилась обработка уведомления
type WebhookOutcome string

const (
	WebhookApplied WebhookOutcome = "applied"
	WebhookReplay  WebhookOutcome = "replay"
	WebhookIgnored WebhookOutcome = "ignored"
)

type CheckoutService interface {
	// CreatePayment создает платеж по корзине и заказ-снимок ее строк.
	// amount необязателен; если передан, должен совпасть с суммой корзины.
	CreatePayment(ctx context.Context, userID, basketID int64, amount *decimal.Decimal) (*models.Payment, error)
	// HandleWebhook применяет статус провайдера к платежу; повторная доставка ничего не меняет
	HandleWebhook(ctx context.Context, externalID, externalStatus string) (WebhookOutcome, error)
	GetPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error)
	// SyncPayment запрашивает статус у провайдера и применяет его как вебхук
	SyncPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error)
}

type checkoutService struct {
	log      *slog.Logger
	db       *sql.DB
	baskets  storage.BasketStorage
	payments storage.PaymentStorage
	orders   storage.OrderStorage
	items    storage.ItemStorage
	ledger   StockLedger
	provider PaymentProvider
}

func NewCheckoutService(
	log *slog.Logger,
	db *sql.DB,
	baskets storage.BasketStorage,
	payments storage.PaymentStorage,
	orders storage.OrderStorage,
	items storage.ItemStorage,
	ledger StockLedger,
	provider PaymentProvider,
) CheckoutService {
	return &checkoutService{
		log:      log,
		db:       db,
		baskets:  baskets,
		payments: payments,
		orders:   orders,
		items:    items,
		ledger:   ledger,
		provider: provider,
	}
}

// mapProviderStatus переводит статус провайдера; ok=false: статус без перехода
func mapProviderStatus(status string) (models.PaymentStatus, bool, error) {
	switch status {
	case "succeeded":
		return models.PaymentSucceeded, true, nil
	case "canceled":
		return models.PaymentCanceled, true, nil
	case "pending", "waiting_for_capture":
		return "", false, nil
	}
	return "", false, fmt.Errorf("unknown payment status %q: %w", status, ErrValidation)
}

func (s *checkoutService) CreatePayment(ctx context.Context, userID, basketID int64, amount *decimal.Decimal) (*models.Payment, error) {
	const op = "service.CheckoutService.CreatePayment"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("basketID", basketID))
	logger.Info("creating payment")

	basket, err := s.baskets.GetBasketByID(ctx, basketID)
	if err != nil {
		if errors.Is(err, storage.ErrBasketNotFound) {
			return nil, fmt.Errorf("%s: basket %d: %w", op, basketID, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get basket: %w", op, err)
	}
	if basket.UserID != userID {
		metrics.PaymentsCreated.WithLabelValues("rejected").Inc()
		logger.Warn("basket belongs to another user")
		return nil, fmt.Errorf("%s: basket does not belong to user: %w", op, ErrValidation)
	}

	lines, err := s.baskets.ListItems(ctx, basketID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list basket: %w", op, err)
	}
	if len(lines) == 0 {
		metrics.PaymentsCreated.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%s: basket is empty: %w", op, ErrValidation)
	}
	if !models.IsAvailableToOrder(lines) {
		metrics.PaymentsCreated.WithLabelValues("rejected").Inc()
		logger.Warn("basket has items out of stock")
		return nil, fmt.Errorf("%s: %w", op, ErrBasketNotAvailable)
	}

	total := models.TotalCost(lines)
	if amount != nil && !amount.Equal(total) {
		metrics.PaymentsCreated.WithLabelValues("rejected").Inc()
		logger.Warn("amount mismatch", slog.String("requested", amount.String()), slog.String("total", total.String()))
		return nil, fmt.Errorf("%s: amount %s does not match basket total %s: %w", op, amount, total, ErrValidation)
	}

	payment, err := s.payments.CreatePayment(ctx, &models.Payment{UserID: userID, BasketID: basketID, Amount: total})
	if err != nil {
		logger.Error("failed to create payment", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.provider.Create(ctx, total, fmt.Sprintf("Payment for basket %d", basketID))
	if err != nil {
		// PENDING-строка остается для ручной сверки
		metrics.PaymentsCreated.WithLabelValues("provider_error").Inc()
		logger.Error("payment provider failed", slog.Int64("paymentID", payment.ID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrExternalProvider, err)
	}
	if err := s.payments.SetExternal(ctx, payment.ID, session.ExternalID, session.ConfirmationURL); err != nil {
		logger.Error("failed to store external payment id", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payment.ExternalPaymentID = &session.ExternalID
	payment.ConfirmationURL = session.ConfirmationURL

	if err := s.createOrder(ctx, payment, lines); err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.PaymentsCreated.WithLabelValues("created").Inc()
	logger.Info("payment created", slog.Int64("paymentID", payment.ID), slog.String("amount", total.String()))
	return payment, nil
}

// createOrder пишет заказ и снимок строк корзины одной транзакцией
func (s *checkoutService) createOrder(ctx context.Context, payment *models.Payment, lines []*models.BasketItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	paymentID := payment.ID
	orderID, err := s.orders.CreateOrderTx(ctx, tx, &models.Order{
		UserID:    payment.UserID,
		PaymentID: &paymentID,
		Status:    models.OrderStatusCreated,
	})
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return err
	}

	for _, line := range lines {
		productID := line.ProductID
		item := &models.OrderItem{
			OrderID:   orderID,
			ProductID: &productID,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.PriceWithDiscount(),
		}
		if err := s.orders.CreateOrderItemTx(ctx, tx, item); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HandleWebhook не доверяет статусу из тела уведомления: под блокировкой платежа
// статус перечитывается у провайдера, применяется именно он.
func (s *checkoutService) HandleWebhook(ctx context.Context, externalID, externalStatus string) (WebhookOutcome, error) {
	return s.applyProviderStatus(ctx, externalID, externalStatus, nil)
}

// applyProviderStatus применяет статус платежа провайдера; session == nil означает,
// что статус нужно запросить у провайдера после блокировки строки.
func (s *checkoutService) applyProviderStatus(ctx context.Context, externalID, claimedStatus string, session *models.PaymentSession) (WebhookOutcome, error) {
	const op = "service.CheckoutService.HandleWebhook"
	logger := s.log.With(slog.String("op", op), slog.String("externalID", externalID), slog.String("status", claimedStatus))
	logger.Info("webhook received")

	statusLabel := claimedStatus
	count := func(outcome string) {
		metrics.WebhookEvents.WithLabelValues(statusLabel, outcome).Inc()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		count("error")
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	// блокировка строки платежа закрывает гонку параллельных повторных доставок
	payment, err := s.payments.LockPaymentByExternalIDTx(ctx, tx, externalID)
	if err != nil {
		rollback()
		switch {
		case errors.Is(err, storage.ErrPaymentNotFound):
			count("not_found")
			logger.Warn("unknown payment")
			return "", fmt.Errorf("%s: payment %s: %w", op, externalID, ErrNotFound)
		case errors.Is(err, storage.ErrLocked):
			count("locked")
			logger.Warn("payment is being processed by another delivery")
			return "", fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		}
		count("error")
		logger.Error("failed to lock payment", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to lock payment: %w", op, err)
	}
	logger = logger.With(slog.Int64("paymentID", payment.ID))

	if payment.Status.IsTerminal() {
		rollback()
		count(string(WebhookReplay))
		logger.Info("payment already final, nothing to do", slog.String("current", string(payment.Status)))
		return WebhookReplay, nil
	}

	if session == nil {
		session, err = s.provider.FindOne(ctx, externalID)
		if err != nil {
			rollback()
			count("provider_error")
			logger.Error("failed to verify status with provider", slog.Any("error", err))
			return "", fmt.Errorf("%s: %w: %w", op, ErrExternalProvider, err)
		}
	}
	if session.Status != claimedStatus {
		logger.Warn("notification status differs from provider", slog.String("provider", session.Status))
	}
	statusLabel = session.Status

	newStatus, transition, mapErr := mapProviderStatus(session.Status)
	if mapErr != nil {
		statusLabel = "unknown"
		rollback()
		count("error")
		logger.Warn("unknown provider status", slog.String("provider", session.Status))
		return "", fmt.Errorf("%s: %w", op, mapErr)
	}
	if !transition {
		rollback()
		count(string(WebhookIgnored))
		logger.Info("intermediate status acknowledged", slog.String("provider", session.Status))
		return WebhookIgnored, nil
	}

	switch newStatus {
	case models.PaymentSucceeded:
		if err := s.applySucceeded(ctx, tx, payment, logger); err != nil {
			rollback()
			count("error")
			logger.Error("failed to apply successful payment", slog.Any("error", err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
	case models.PaymentCanceled:
		if err := s.setOrderStatus(ctx, tx, payment.ID, models.OrderStatusCanceled, logger); err != nil {
			rollback()
			count("error")
			logger.Error("failed to cancel order", slog.Any("error", err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	// статус платежа пишется последним
	if err := s.payments.UpdateStatusTx(ctx, tx, payment.ID, newStatus); err != nil {
		rollback()
		count("error")
		logger.Error("failed to update payment status", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		count("error")
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	count(string(WebhookApplied))
	logger.Info("payment status applied", slog.String("new", string(newStatus)))
	return WebhookApplied, nil
}

// applySucceeded списывает остатки по строкам корзины, очищает ее и переводит заказ в paid
func (s *checkoutService) applySucceeded(ctx context.Context, tx *sql.Tx, payment *models.Payment, logger *slog.Logger) error {
	lines, err := s.baskets.ListItemsTx(ctx, tx, payment.BasketID)
	if err != nil {
		return fmt.Errorf("failed to list basket: %w", err)
	}

	for _, line := range lines {
		if err := s.ledger.Decrement(ctx, tx, line.ItemID, line.ColorID, line.SizeID, line.Quantity); err != nil {
			return err
		}
		if err := s.items.IncrementOrderCountTx(ctx, tx, line.ItemID, line.Quantity); err != nil {
			return err
		}
	}

	if err := s.baskets.ClearTx(ctx, tx, payment.BasketID); err != nil {
		return err
	}
	logger.Info("basket cleared", slog.Int("lines", len(lines)))

	return s.setOrderStatus(ctx, tx, payment.ID, models.OrderStatusPaid, logger)
}

// setOrderStatus: отсутствие заказа не блокирует платеж, деньги уже у провайдера
func (s *checkoutService) setOrderStatus(ctx context.Context, tx *sql.Tx, paymentID int64, status string, logger *slog.Logger) error {
	err := s.orders.SetStatusByPaymentTx(ctx, tx, paymentID, status)
	if errors.Is(err, storage.ErrOrderNotFound) {
		logger.Warn("no order for payment", slog.String("orderStatus", status))
		return nil
	}
	return err
}

func (s *checkoutService) GetPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error) {
	const op = "service.CheckoutService.GetPayment"

	payment, err := s.payments.GetPaymentByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%s: payment %d: %w", op, paymentID, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// чужой платеж не показываем
	if payment.UserID != userID {
		return nil, fmt.Errorf("%s: payment %d: %w", op, paymentID, ErrNotFound)
	}
	return payment, nil
}

func (s *checkoutService) SyncPayment(ctx context.Context, userID, paymentID int64) (*models.Payment, error) {
	const op = "service.CheckoutService.SyncPayment"
	logger := s.log.With(slog.String("op", op), slog.Int64("paymentID", paymentID))

	payment, err := s.GetPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status.IsTerminal() {
		return payment, nil
	}
	if payment.ExternalPaymentID == nil {
		return nil, fmt.Errorf("%s: payment was not registered with provider: %w", op, ErrValidation)
	}

	session, err := s.provider.FindOne(ctx, *payment.ExternalPaymentID)
	if err != nil {
		logger.Error("payment provider failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrExternalProvider, err)
	}

	if _, err := s.applyProviderStatus(ctx, *payment.ExternalPaymentID, session.Status, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetPayment(ctx, userID, paymentID)
}
