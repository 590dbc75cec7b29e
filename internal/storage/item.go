package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/supershop/internal/domain/models"
)

// ItemStorage описывает методы для работы с товарами каталога
type ItemStorage interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	// UpdateItem сохраняет все поля товара, включая ссылки на главные фото
	UpdateItem(ctx context.Context, item *models.Item) error
	// SetGeneralPhoto пишет только ссылку одного слота
	SetGeneralPhoto(ctx context.Context, itemID int64, slot models.Slot, linkID *int64) error
	IncrementOrderCountTx(ctx context.Context, tx *sql.Tx, itemID int64, by int) error
	DeleteItem(ctx context.Context, id int64) error
}

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) ItemStorage {
	return &itemRepository{db: db}
}

// refColumn: колонка items со ссылкой на главное фото слота
func refColumn(slot models.Slot) string {
	if slot == models.SlotTwo {
		return "general_photo_two"
	}
	return "general_photo_one"
}

const itemColumns = `i.id, i.name, i.description, i.price, i.discount, i.rating, i.order_count,
		i.general_photo_one, i.general_photo_two`

func scanItem(row interface{ Scan(dest ...any) error }) (*models.Item, error) {
	item := &models.Item{}
	var one, two sql.NullInt64
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &item.Discount, &item.Rating,
		&item.OrderCount, &one, &two,
	)
	if err != nil {
		return nil, err
	}
	item.GeneralPhotoOne = nullToPtr(one)
	item.GeneralPhotoTwo = nullToPtr(two)
	return item, nil
}

func (r *itemRepository) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepository) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, price = $3, discount = $4, rating = $5,
		    general_photo_one = $6, general_photo_two = $7
		WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		item.Name, item.Description, item.Price, item.Discount, item.Rating,
		ptrToNull(item.GeneralPhotoOne), ptrToNull(item.GeneralPhotoTwo), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectAffected(res, ErrItemNotFound)
}

func (r *itemRepository) SetGeneralPhoto(ctx context.Context, itemID int64, slot models.Slot, linkID *int64) error {
	query := fmt.Sprintf("UPDATE items SET %s = $1 WHERE id = $2", refColumn(slot))
	res, err := r.db.ExecContext(ctx, query, ptrToNull(linkID), itemID)
	if err != nil {
		return fmt.Errorf("failed to set general photo: %w", err)
	}
	return expectAffected(res, ErrItemNotFound)
}

// IncrementOrderCountTx увеличивает счетчик заказов в рамках транзакции вебхука
func (r *itemRepository) IncrementOrderCountTx(ctx context.Context, tx *sql.Tx, itemID int64, by int) error {
	res, err := tx.ExecContext(ctx, "UPDATE items SET order_count = order_count + $1 WHERE id = $2", by, itemID)
	if err != nil {
		return fmt.Errorf("failed to increment order count: %w", err)
	}
	return expectAffected(res, ErrItemNotFound)
}

// DeleteItem удаляет товар; связи, остатки и строки корзин удаляет каскад БД
func (r *itemRepository) DeleteItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return expectAffected(res, ErrItemNotFound)
}

func nullToPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func ptrToNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
