package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/storage"
)

type FavouritesService interface {
	List(ctx context.Context, userID int64) ([]*models.FavouritesItem, error)
	Add(ctx context.Context, userID, stockID int64) error
	Remove(ctx context.Context, userID, stockID int64) error
}

type favouritesService struct {
	log        *slog.Logger
	favourites storage.FavouritesStorage
	stocks     storage.StockStorage
}

func NewFavouritesService(log *slog.Logger, favourites storage.FavouritesStorage, stocks storage.StockStorage) FavouritesService {
	return &favouritesService{log: log, favourites: favourites, stocks: stocks}
}

func (s *favouritesService) List(ctx context.Context, userID int64) ([]*models.FavouritesItem, error) {
	const op = "service.FavouritesService.List"

	fav, err := s.favourites.GetOrCreateFavourites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := s.favourites.ListItems(ctx, fav.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []*models.FavouritesItem{}
	}
	return items, nil
}

func (s *favouritesService) Add(ctx context.Context, userID, stockID int64) error {
	const op = "service.FavouritesService.Add"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("stockID", stockID))

	if _, err := s.stocks.GetStockByID(ctx, stockID); err != nil {
		if errors.Is(err, storage.ErrStockNotFound) {
			return fmt.Errorf("%s: product %d: %w", op, stockID, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	fav, err := s.favourites.GetOrCreateFavourites(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.favourites.Exists(ctx, fav.ID, stockID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return fmt.Errorf("%s: %w", op, ErrAlreadyInFavourites)
	}

	// между проверкой и вставкой мог успеть параллельный запрос
	if _, err := s.favourites.AddItem(ctx, fav.ID, stockID); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyInFavourites)
		}
		logger.Error("failed to add to favourites", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product added to favourites")
	return nil
}

func (s *favouritesService) Remove(ctx context.Context, userID, stockID int64) error {
	const op = "service.FavouritesService.Remove"

	fav, err := s.favourites.GetOrCreateFavourites(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.favourites.RemoveItem(ctx, fav.ID, stockID); err != nil {
		if errors.Is(err, storage.ErrFavouriteNotFound) {
			return fmt.Errorf("%s: product not in favourites: %w", op, ErrValidation)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("product removed from favourites", slog.String("op", op), slog.Int64("userID", userID), slog.Int64("stockID", stockID))
	return nil
}
