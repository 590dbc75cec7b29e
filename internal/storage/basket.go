package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/supershop/internal/domain/models"
)

// BasketStorage описывает методы для работы с корзиной
type BasketStorage interface {
	GetBasketByID(ctx context.Context, id int64) (*models.Basket, error)
	GetBasketByUser(ctx context.Context, userID int64) (*models.Basket, error)
	// GetOrCreateBasket возвращает корзину пользователя, создавая ее при первом обращении
	GetOrCreateBasket(ctx context.Context, userID int64) (*models.Basket, error)

	// AddItem добавляет строку; повтор того же остатка суммирует количество
	AddItem(ctx context.Context, basketID, productID int64, quantity int) (*models.BasketItem, error)
	UpdateItemQuantity(ctx context.Context, basketID, basketItemID int64, quantity int) error
	DeleteItems(ctx context.Context, basketID int64, ids []int64) (int64, error)
	ListItems(ctx context.Context, basketID int64) ([]*models.BasketItem, error)

	ListItemsTx(ctx context.Context, tx *sql.Tx, basketID int64) ([]*models.BasketItem, error)
	ClearTx(ctx context.Context, tx *sql.Tx, basketID int64) error
}

type basketRepository struct {
	db *sql.DB
}

func NewBasketRepository(db *sql.DB) BasketStorage {
	return &basketRepository{db: db}
}

func (r *basketRepository) GetBasketByID(ctx context.Context, id int64) (*models.Basket, error) {
	b := &models.Basket{}
	err := r.db.QueryRowContext(ctx, "SELECT id, user_id, created_at, updated_at FROM baskets WHERE id = $1", id).
		Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBasketNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *basketRepository) GetBasketByUser(ctx context.Context, userID int64) (*models.Basket, error) {
	b := &models.Basket{}
	err := r.db.QueryRowContext(ctx, "SELECT id, user_id, created_at, updated_at FROM baskets WHERE user_id = $1", userID).
		Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBasketNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *basketRepository) GetOrCreateBasket(ctx context.Context, userID int64) (*models.Basket, error) {
	// DO UPDATE нужен, чтобы RETURNING вернул строку и при конфликте
	query := `
		INSERT INTO baskets (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = baskets.updated_at
		RETURNING id, user_id, created_at, updated_at`
	b := &models.Basket{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to get or create basket: %w", err)
	}
	return b, nil
}

func (r *basketRepository) AddItem(ctx context.Context, basketID, productID int64, quantity int) (*models.BasketItem, error) {
	query := `
		INSERT INTO basket_items (basket_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (basket_id, product_id) DO UPDATE SET quantity = basket_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity`
	line := &models.BasketItem{BasketID: basketID, ProductID: productID}
	if err := r.db.QueryRowContext(ctx, query, basketID, productID, quantity).Scan(&line.ID, &line.Quantity); err != nil {
		return nil, fmt.Errorf("failed to add basket item: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE baskets SET updated_at = NOW() WHERE id = $1", basketID); err != nil {
		return nil, fmt.Errorf("failed to touch basket: %w", err)
	}
	return line, nil
}

func (r *basketRepository) UpdateItemQuantity(ctx context.Context, basketID, basketItemID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE basket_items SET quantity = $1 WHERE id = $2 AND basket_id = $3",
		quantity, basketItemID, basketID,
	)
	if err != nil {
		return fmt.Errorf("failed to update basket item: %w", err)
	}
	return expectAffected(res, ErrBasketItemNotFound)
}

func (r *basketRepository) DeleteItems(ctx context.Context, basketID int64, ids []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM basket_items WHERE basket_id = $1 AND id = ANY($2)",
		basketID, pq.Array(ids),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete basket items: %w", err)
	}
	return res.RowsAffected()
}

func (r *basketRepository) ListItems(ctx context.Context, basketID int64) ([]*models.BasketItem, error) {
	return listBasketItems(ctx, r.db, basketID)
}

func (r *basketRepository) ListItemsTx(ctx context.Context, tx *sql.Tx, basketID int64) ([]*models.BasketItem, error) {
	return listBasketItems(ctx, tx, basketID)
}

func (r *basketRepository) ClearTx(ctx context.Context, tx *sql.Tx, basketID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM basket_items WHERE basket_id = $1", basketID); err != nil {
		return fmt.Errorf("failed to clear basket: %w", err)
	}
	return nil
}

func listBasketItems(ctx context.Context, q querier, basketID int64) ([]*models.BasketItem, error) {
	query := `
		SELECT bi.id, bi.basket_id, bi.product_id, bi.quantity,
		       i.id, i.name, s.color_id, s.size_id, c.name, z.name, i.price, i.discount, s.quantity
		FROM basket_items bi
		JOIN item_stocks s ON s.id = bi.product_id
		JOIN items i ON i.id = s.item_id
		JOIN colors c ON c.id = s.color_id
		JOIN sizes z ON z.id = s.size_id
		WHERE bi.basket_id = $1
		ORDER BY bi.id`
	rows, err := q.QueryContext(ctx, query, basketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*models.BasketItem
	for rows.Next() {
		l := &models.BasketItem{}
		if err := rows.Scan(
			&l.ID, &l.BasketID, &l.ProductID, &l.Quantity,
			&l.ItemID, &l.ItemName, &l.ColorID, &l.SizeID, &l.ColorName, &l.SizeName,
			&l.Price, &l.Discount, &l.StockQuantity,
		); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
