package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/supershop/internal/domain/models"
	"github.com/linemk/supershop/internal/storage"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ItemPage: страница выдачи каталога
type ItemPage struct {
	Count   int            `json:"count"`
	Page    int            `json:"page"`
	Results []*models.Item `json:"results"`
}

// CatalogService: публичная выдача каталога
type CatalogService interface {
	// ListItems: limit <= 0 заменяется размером по умолчанию, больше MaxPageSize обрезается
	ListItems(ctx context.Context, filter models.ItemFilter, page, limit int) (*ItemPage, error)
	// ListCategoryItems: та же выдача внутри категории, неизвестный slug дает ErrNotFound
	ListCategoryItems(ctx context.Context, slug string, filter models.ItemFilter, page, limit int) (*ItemPage, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

type catalogService struct {
	log     *slog.Logger
	catalog storage.CatalogStorage
}

func NewCatalogService(log *slog.Logger, catalog storage.CatalogStorage) CatalogService {
	return &catalogService{log: log, catalog: catalog}
}

func (s *catalogService) ListItems(ctx context.Context, filter models.ItemFilter, page, limit int) (*ItemPage, error) {
	const op = "service.CatalogService.ListItems"

	if page < 1 {
		return nil, fmt.Errorf("%s: page must be positive: %w", op, ErrValidation)
	}
	if _, ok := models.ParseItemSort(string(filter.Sort)); !ok {
		return nil, fmt.Errorf("%s: unknown sort %q: %w", op, filter.Sort, ErrValidation)
	}
	if filter.MinPrice != nil && filter.MinPrice.IsNegative() || filter.MaxPrice != nil && filter.MaxPrice.IsNegative() {
		return nil, fmt.Errorf("%s: price bounds must be non-negative: %w", op, ErrValidation)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%s: min_price exceeds max_price: %w", op, ErrValidation)
	}

	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	items, total, err := s.catalog.ListItems(ctx, filter)
	if err != nil {
		s.log.Error("failed to list items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []*models.Item{}
	}
	return &ItemPage{Count: total, Page: page, Results: items}, nil
}

func (s *catalogService) ListCategoryItems(ctx context.Context, slug string, filter models.ItemFilter, page, limit int) (*ItemPage, error) {
	const op = "service.CatalogService.ListCategoryItems"

	if _, err := s.catalog.GetCategoryBySlug(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%s: category %q: %w", op, slug, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	filter.CategorySlug = slug
	return s.ListItems(ctx, filter, page, limit)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "service.CatalogService.ListCategories"
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}
