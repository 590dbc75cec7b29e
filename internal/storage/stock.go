package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/supershop/internal/domain/models"
)

// StockStorage описывает методы для работы с остатками (ItemStock)
type StockStorage interface {
	// FindStock ищет остаток по товару и названиям цвета и размера
	FindStock(ctx context.Context, itemID int64, color, size string) (*models.ItemStock, error)
	GetStockByID(ctx context.Context, id int64) (*models.ItemStock, error)
	// ListStockByItem: цвета и размеры фильтра сравниваются по названию
	ListStockByItem(ctx context.Context, itemID int64, filter models.StockFilter) ([]*models.ItemStock, error)

	// LockStockTx блокирует строку остатка до конца транзакции
	LockStockTx(ctx context.Context, tx *sql.Tx, itemID, colorID, sizeID int64) (*models.ItemStock, error)
	UpdateQuantityTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
	DeleteStockTx(ctx context.Context, tx *sql.Tx, id int64) error
}

type stockRepository struct {
	db *sql.DB
}

func NewStockRepository(db *sql.DB) StockStorage {
	return &stockRepository{db: db}
}

const stockSelect = `
	SELECT s.id, s.item_id, s.color_id, s.size_id, c.name, z.name, s.quantity
	FROM item_stocks s
	JOIN colors c ON c.id = s.color_id
	JOIN sizes z ON z.id = s.size_id`

func scanStock(row interface{ Scan(dest ...any) error }) (*models.ItemStock, error) {
	st := &models.ItemStock{}
	if err := row.Scan(&st.ID, &st.ItemID, &st.ColorID, &st.SizeID, &st.ColorName, &st.SizeName, &st.Quantity); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *stockRepository) FindStock(ctx context.Context, itemID int64, color, size string) (*models.ItemStock, error) {
	query := stockSelect + ` WHERE s.item_id = $1 AND c.name = $2 AND z.name = $3`
	st, err := scanStock(r.db.QueryRowContext(ctx, query, itemID, color, size))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}
	return st, nil
}

func (r *stockRepository) GetStockByID(ctx context.Context, id int64) (*models.ItemStock, error) {
	st, err := scanStock(r.db.QueryRowContext(ctx, stockSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}
	return st, nil
}

func (r *stockRepository) ListStockByItem(ctx context.Context, itemID int64, filter models.StockFilter) ([]*models.ItemStock, error) {
	query := stockSelect + ` WHERE s.item_id = $1`
	args := []any{itemID}
	if len(filter.Colors) > 0 {
		args = append(args, pq.Array(filter.Colors))
		query += fmt.Sprintf(" AND c.name = ANY($%d)", len(args))
	}
	if len(filter.Sizes) > 0 {
		args = append(args, pq.Array(filter.Sizes))
		query += fmt.Sprintf(" AND z.name = ANY($%d)", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query+" ORDER BY s.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []*models.ItemStock
	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stockRepository) LockStockTx(ctx context.Context, tx *sql.Tx, itemID, colorID, sizeID int64) (*models.ItemStock, error) {
	query := `
		SELECT id, item_id, color_id, size_id, quantity
		FROM item_stocks
		WHERE item_id = $1 AND color_id = $2 AND size_id = $3
		FOR UPDATE`
	st := &models.ItemStock{}
	err := tx.QueryRowContext(ctx, query, itemID, colorID, sizeID).
		Scan(&st.ID, &st.ItemID, &st.ColorID, &st.SizeID, &st.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStockNotFound
		}
		return nil, err
	}
	return st, nil
}

func (r *stockRepository) UpdateQuantityTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	res, err := tx.ExecContext(ctx, "UPDATE item_stocks SET quantity = $1 WHERE id = $2", quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update stock quantity: %w", err)
	}
	return expectAffected(res, ErrStockNotFound)
}

func (r *stockRepository) DeleteStockTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM item_stocks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	return expectAffected(res, ErrStockNotFound)
}
