package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/lib/metrics"
	"github.com/linemk/supershop/internal/storage"
)

// StockLedger ведет остатки по кортежу (товар, цвет, размер)
type StockLedger interface {
	// Decrement списывает qty под блокировкой строки; строка с остатком <= 0 удаляется
	Decrement(ctx context.Context, tx *sql.Tx, itemID, colorID, sizeID int64, qty int) error
	ListByItem(ctx context.Context, itemID int64, filter models.StockFilter) ([]*models.ItemStock, error)
}

type stockLedger struct {
	log    *slog.Logger
	stocks storage.StockStorage
}

func NewStockLedger(log *slog.Logger, stocks storage.StockStorage) StockLedger {
	return &stockLedger{log: log, stocks: stocks}
}

func (l *stockLedger) Decrement(ctx context.Context, tx *sql.Tx, itemID, colorID, sizeID int64, qty int) error {
	const op = "service.StockLedger.Decrement"
	logger := l.log.With(
		slog.String("op", op),
		slog.Int64("itemID", itemID),
		slog.Int64("colorID", colorID),
		slog.Int64("sizeID", sizeID),
	)

	if qty <= 0 {
		return fmt.Errorf("%s: quantity must be positive: %w", op, ErrValidation)
	}

	st, err := l.stocks.LockStockTx(ctx, tx, itemID, colorID, sizeID)
	if err != nil {
		if errors.Is(err, storage.ErrStockNotFound) {
			logger.Error("stock row not found")
			return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
		}
		logger.Error("failed to lock stock", slog.Any("error", err))
		return fmt.Errorf("%s: failed to lock stock: %w", op, err)
	}

	left := st.Quantity - qty
	if left > 0 {
		if err := l.stocks.UpdateQuantityTx(ctx, tx, st.ID, left); err != nil {
			logger.Error("failed to update stock", slog.Any("error", err))
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Info("stock decremented", slog.Int("left", left))
		return nil
	}

	if left < 0 {
		logger.Warn("stock oversold", slog.Int("available", st.Quantity), slog.Int("requested", qty), slog.Int("shortfall", -left))
	}
	if err := l.stocks.DeleteStockTx(ctx, tx, st.ID); err != nil {
		logger.Error("failed to delete empty stock", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.StockRowsDeleted.Inc()
	logger.Info("stock row removed", slog.Int64("stockID", st.ID))
	return nil
}

func (l *stockLedger) ListByItem(ctx context.Context, itemID int64, filter models.StockFilter) ([]*models.ItemStock, error) {
	const op = "service.StockLedger.ListByItem"
	stocks, err := l.stocks.ListStockByItem(ctx, itemID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stocks, nil
}
