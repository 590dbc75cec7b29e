package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/storage"
)

// BasketView: корзина со строками и итогами
type BasketView struct {
	ID                 int64                `json:"id"`
	UserID             int64                `json:"user"`
	Items              []*models.BasketItem `json:"items"`
	TotalCost          decimal.Decimal      `json:"total_cost"`
	WithoutDiscount    decimal.Decimal      `json:"without_discount"`
	IsAvailableToOrder bool                 `json:"is_available_to_order"`
}

type BasketService interface {
	GetBasket(ctx context.Context, userID int64) (*BasketView, error)
	// AddItem ищет остаток по товару, цвету и размеру; повторное добавление суммирует количество
	AddItem(ctx context.Context, userID, itemID int64, color, size string, quantity int) (*models.BasketItem, error)
	UpdateQuantity(ctx context.Context, userID, basketItemID int64, quantity int) error
	DeleteItems(ctx context.Context, userID int64, ids []int64) (int64, error)
}

type basketService struct {
	log     *slog.Logger
	baskets storage.BasketStorage
	stocks  storage.StockStorage
}

func NewBasketService(log *slog.Logger, baskets storage.BasketStorage, stocks storage.StockStorage) BasketService {
	return &basketService{log: log, baskets: baskets, stocks: stocks}
}

func (s *basketService) GetBasket(ctx context.Context, userID int64) (*BasketView, error) {
	const op = "service.BasketService.GetBasket"

	basket, err := s.baskets.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lines, err := s.baskets.ListItems(ctx, basket.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list basket: %w", op, err)
	}
	if lines == nil {
		lines = []*models.BasketItem{}
	}

	return &BasketView{
		ID:                 basket.ID,
		UserID:             basket.UserID,
		Items:              lines,
		TotalCost:          models.TotalCost(lines),
		WithoutDiscount:    models.WithoutDiscount(lines),
		IsAvailableToOrder: models.IsAvailableToOrder(lines),
	}, nil
}

func (s *basketService) AddItem(ctx context.Context, userID, itemID int64, color, size string, quantity int) (*models.BasketItem, error) {
	const op = "service.BasketService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("itemID", itemID))

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: quantity must be positive: %w", op, ErrValidation)
	}

	stock, err := s.stocks.FindStock(ctx, itemID, color, size)
	if err != nil {
		if errors.Is(err, storage.ErrStockNotFound) {
			logger.Warn("no stock for color and size", slog.String("color", color), slog.String("size", size))
			return nil, fmt.Errorf("%s: no stock for color %q and size %q: %w", op, color, size, ErrValidation)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	basket, err := s.baskets.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	line, err := s.baskets.AddItem(ctx, basket.ID, stock.ID, quantity)
	if err != nil {
		logger.Error("failed to add basket item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	line.ItemID = stock.ItemID
	line.ColorID, line.SizeID = stock.ColorID, stock.SizeID
	line.ColorName, line.SizeName = stock.ColorName, stock.SizeName
	line.StockQuantity = stock.Quantity

	logger.Info("item added to basket", slog.Int64("productID", stock.ID), slog.Int("quantity", line.Quantity))
	return line, nil
}

func (s *basketService) UpdateQuantity(ctx context.Context, userID, basketItemID int64, quantity int) error {
	const op = "service.BasketService.UpdateQuantity"

	if quantity <= 0 {
		return fmt.Errorf("%s: quantity must be positive: %w", op, ErrValidation)
	}

	basket, err := s.baskets.GetBasketByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrBasketNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.baskets.UpdateItemQuantity(ctx, basket.ID, basketItemID, quantity); err != nil {
		if errors.Is(err, storage.ErrBasketItemNotFound) {
			return fmt.Errorf("%s: basket item %d: %w", op, basketItemID, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *basketService) DeleteItems(ctx context.Context, userID int64, ids []int64) (int64, error) {
	const op = "service.BasketService.DeleteItems"

	if len(ids) == 0 {
		return 0, fmt.Errorf("%s: ids are required: %w", op, ErrValidation)
	}

	basket, err := s.baskets.GetBasketByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrBasketNotFound) {
			return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	deleted, err := s.baskets.DeleteItems(ctx, basket.ID, ids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("basket items deleted", slog.String("op", op), slog.Int64("userID", userID), slog.Int64("deleted", deleted))
	return deleted, nil
}
