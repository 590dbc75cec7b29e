package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/linemk/supershop/internal/domain/models"
)

var ErrCategoryNotFound = errors.New("category not found")

// CatalogStorage: выдача каталога и категории
type CatalogStorage interface {
	// ListItems возвращает страницу товаров и общее число подходящих под фильтр
	ListItems(ctx context.Context, filter models.ItemFilter) ([]*models.Item, int, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) CatalogStorage {
	return &catalogRepository{db: db}
}

// itemWhere собирает условия фильтра; args нумеруются с $1
func itemWhere(filter models.ItemFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.CategorySlug != "" {
		arg(`EXISTS (
			SELECT 1 FROM item_categories ic
			JOIN categories c ON c.id = ic.category_id
			WHERE ic.item_id = i.id AND c.slug = $%d)`, filter.CategorySlug)
	}
	if filter.MinPrice != nil {
		arg("i.price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		arg("i.price <= $%d", *filter.MaxPrice)
	}
	if filter.WithDiscount {
		conds = append(conds, "i.discount > 0")
	}
	if filter.InStock {
		conds = append(conds, "EXISTS (SELECT 1 FROM item_stocks s WHERE s.item_id = i.id AND s.quantity > 0)")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// itemOrder: id в конце делает страницы стабильными
func itemOrder(sort models.ItemSort) string {
	switch sort {
	case models.SortDiscount:
		return " ORDER BY i.discount DESC, i.id"
	case models.SortPriceAsc:
		return " ORDER BY i.price, i.id"
	case models.SortPriceDesc:
		return " ORDER BY i.price DESC, i.id"
	}
	return " ORDER BY i.order_count DESC, i.id"
}

func (r *catalogRepository) ListItems(ctx context.Context, filter models.ItemFilter) ([]*models.Item, int, error) {
	where, args := itemWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items i`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	query := `SELECT ` + itemColumns + ` FROM items i` + where + itemOrder(filter.Sort)
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *catalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name, slug FROM categories WHERE slug = $1", slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}
